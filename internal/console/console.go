// Package console is an interactive terminal front end over the task shell.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/taskflow/backend/internal/app"
	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
	"github.com/taskflow/backend/internal/view"
)

const (
	defaultPrompt = "tasks> "
	clearValue    = "-"
)

// LineReader is the part of *readline.Instance the console uses.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

type Config struct {
	Shell  *app.Shell
	Reader LineReader
	Out    io.Writer
	Logger *logger.Logger
	// Location formats creation dates; nil means local time.
	Location *time.Location
	// WaitTimeout bounds how long a command waits for a fetch to settle.
	WaitTimeout time.Duration
}

type Console struct {
	shell   *app.Shell
	reader  LineReader
	out     io.Writer
	render  *view.Renderer
	log     *logger.Logger
	wait    time.Duration
	query   string
	changes chan struct{}
}

func New(cfg Config) *Console {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	wait := cfg.WaitTimeout
	if wait <= 0 {
		wait = 30 * time.Second
	}
	return &Console{
		shell:   cfg.Shell,
		reader:  cfg.Reader,
		out:     cfg.Out,
		render:  view.NewRenderer(cfg.Out, cfg.Location),
		log:     log,
		wait:    wait,
		changes: make(chan struct{}, 1),
	}
}

// OnChange is meant to be installed as the shell's change callback.
func (c *Console) OnChange(app.Snapshot) {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// Run mounts the shell and serves commands until quit, EOF or ctx ends.
func (c *Console) Run(ctx context.Context) error {
	if err := c.shell.Mount(); err != nil {
		return err
	}
	_ = c.render.LoadingScreen()
	snap, err := c.waitUntil(ctx, func(s app.Snapshot) bool { return !s.InitialLoading })
	if err != nil {
		return err
	}
	c.printList(snap)

	c.reader.SetPrompt(defaultPrompt)
	for {
		line, err := c.reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		quit, err := c.exec(ctx, strings.TrimSpace(line))
		if err != nil {
			if errors.Is(err, app.ErrShellStopped) {
				return nil
			}
			_ = c.render.Alert(err.Error())
		}
		if quit {
			return nil
		}
	}
}

func (c *Console) exec(ctx context.Context, line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		c.printHelp()
	case "list", "ls":
		snap, err := c.shell.Snapshot()
		if err != nil {
			return false, err
		}
		c.printList(snap)
	case "filter":
		return false, c.filter(ctx, arg)
	case "search":
		c.query = arg
		snap, err := c.shell.Snapshot()
		if err != nil {
			return false, err
		}
		c.printList(snap)
	case "retry":
		if err := c.shell.Retry(); err != nil {
			return false, err
		}
		return false, c.settleAndPrint(ctx)
	case "stats":
		snap, err := c.shell.Snapshot()
		if err != nil {
			return false, err
		}
		_ = c.render.Stats(view.ComputeStats(snap.Tasks))
	case "add":
		return false, c.add(ctx)
	case "edit":
		return false, c.edit(ctx, arg)
	case "delete", "rm":
		return false, c.delete(ctx, arg)
	default:
		fmt.Fprintf(c.out, "Unknown command %q. Type 'help' for the list of commands.\n", cmd)
	}
	return false, nil
}

func (c *Console) filter(ctx context.Context, arg string) error {
	if arg == "" {
		return c.printFilters()
	}
	status, ok := ParseStatus(arg)
	if !ok {
		return fmt.Errorf("unknown filter %q (use all, pending, progress or completed)", arg)
	}
	if err := c.shell.SetFilter(status); err != nil {
		return err
	}
	return c.settleAndPrint(ctx)
}

// printFilters lists the filter choices and marks the active one.
func (c *Console) printFilters() error {
	snap, err := c.shell.Snapshot()
	if err != nil {
		return err
	}
	for _, opt := range view.FilterOptions {
		marker := " "
		if opt.Value == snap.Filter {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %s\n", marker, opt.Label)
	}
	return nil
}

func (c *Console) settleAndPrint(ctx context.Context) error {
	snap, err := c.waitUntil(ctx, func(s app.Snapshot) bool { return !s.Loading })
	if err != nil {
		return err
	}
	c.printList(snap)
	return nil
}

func (c *Console) add(ctx context.Context) error {
	form := view.NewForm(nil)
	if !c.fillForm(form) {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}
	task, err := c.shell.Create(ctx, form.Input())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created %q.\n", task.Title)
	return c.printCurrent()
}

func (c *Console) edit(ctx context.Context, arg string) error {
	task, err := c.lookup(arg)
	if err != nil {
		return err
	}
	form := view.NewForm(&task)
	if !c.fillForm(form) {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}
	updated, err := c.shell.Update(ctx, task.ID, form.Input())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Updated %q.\n", updated.Title)
	return c.printCurrent()
}

func (c *Console) delete(ctx context.Context, arg string) error {
	task, err := c.lookup(arg)
	if err != nil {
		return err
	}
	result, err := c.shell.Delete(ctx, task.ID)
	if err != nil {
		return err
	}
	if result == app.DeletePending {
		fmt.Fprintf(c.out, "Run 'delete %s' again to confirm deleting %q.\n", arg, task.Title)
		return nil
	}
	fmt.Fprintf(c.out, "Deleted %q.\n", task.Title)
	return c.printCurrent()
}

// lookup resolves a 1-based row number in the visible list.
func (c *Console) lookup(arg string) (domain.Task, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return domain.Task{}, fmt.Errorf("expected a task number, got %q", arg)
	}
	snap, err := c.shell.Snapshot()
	if err != nil {
		return domain.Task{}, err
	}
	list := view.NewList(snap.Tasks, snap.Filter, c.query)
	if n > len(list.Items) {
		return domain.Task{}, fmt.Errorf("no task number %d", n)
	}
	return list.Items[n-1], nil
}

// fillForm prompts field by field until the form validates. It returns false
// when the user interrupts.
func (c *Console) fillForm(form *view.Form) bool {
	defer c.reader.SetPrompt(defaultPrompt)
	fmt.Fprintln(c.out, form.Heading())

	for {
		title, ok := c.prompt("Title", form.Data.Title)
		if !ok {
			return false
		}
		form.Set(view.FieldTitle, title)

		description, ok := c.prompt("Description "+form.CharCount()+" ('-' clears)", form.Data.Description)
		if !ok {
			return false
		}
		form.Set(view.FieldDescription, description)

		for {
			raw, ok := c.prompt("Status (pending, progress, completed)", string(form.Data.Status))
			if !ok {
				return false
			}
			status, valid := ParseStatus(raw)
			if valid && status != "" {
				form.Set(view.FieldStatus, string(status))
				break
			}
			fmt.Fprintf(c.out, "Unknown status %q.\n", raw)
		}

		if form.Validate() {
			fmt.Fprintln(c.out, form.SubmitLabel(true))
			return true
		}
		_ = c.render.FormErrors(form.Errors)
	}
}

// prompt reads one value. An empty answer keeps current and clearValue
// empties the field.
func (c *Console) prompt(label, current string) (string, bool) {
	p := label + ": "
	if current != "" {
		p = fmt.Sprintf("%s [%s]: ", label, current)
	}
	c.reader.SetPrompt(p)
	line, err := c.reader.Readline()
	if err != nil {
		return "", false
	}
	switch strings.TrimSpace(line) {
	case "":
		return current, true
	case clearValue:
		return "", true
	}
	return line, true
}

func (c *Console) printCurrent() error {
	snap, err := c.shell.Snapshot()
	if err != nil {
		return err
	}
	c.printList(snap)
	return nil
}

func (c *Console) printList(snap app.Snapshot) {
	switch {
	case snap.Loading:
		_ = c.render.Loading()
	case snap.Error != "":
		_ = c.render.ErrorPanel(snap.Error)
	default:
		_ = c.render.Tasks(view.NewList(snap.Tasks, snap.Filter, c.query), snap.PendingDelete)
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, `Commands:
  list                 show tasks
  filter [status]      all, pending, progress or completed; no status lists them
  search [text]        match title or description; no text clears
  add                  create a task
  edit <n>             edit task number n
  delete <n>           delete task number n (run twice to confirm)
  retry                fetch the list again
  stats                count tasks by status
  help                 show this help
  quit                 leave
`)
}

// waitUntil blocks until cond holds for the shell state.
func (c *Console) waitUntil(ctx context.Context, cond func(app.Snapshot) bool) (app.Snapshot, error) {
	deadline := time.NewTimer(c.wait)
	defer deadline.Stop()
	for {
		snap, err := c.shell.Snapshot()
		if err != nil {
			return snap, err
		}
		if cond(snap) {
			return snap, nil
		}
		select {
		case <-c.changes:
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-deadline.C:
			return snap, errors.New("timed out waiting for the task list")
		}
	}
}

// ParseStatus maps console shorthands to a status. "all" and "" map to the
// empty filter.
func ParseStatus(s string) (domain.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", true
	case "pending":
		return domain.StatusPending, true
	case "progress", "in progress", "in-progress", "inprogress":
		return domain.StatusInProgress, true
	case "completed", "complete", "done":
		return domain.StatusCompleted, true
	}
	return "", false
}
