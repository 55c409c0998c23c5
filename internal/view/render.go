package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"
)

const descriptionPreview = 40

// Renderer writes plain-text panels for a terminal front end.
type Renderer struct {
	w   io.Writer
	loc *time.Location
}

func NewRenderer(w io.Writer, loc *time.Location) *Renderer {
	return &Renderer{w: w, loc: loc}
}

func (r *Renderer) LoadingScreen() error {
	_, err := fmt.Fprintln(r.w, "Task Manager\nSynchronizing workspace...")
	return err
}

func (r *Renderer) Loading() error {
	_, err := fmt.Fprintln(r.w, "Loading tasks...")
	return err
}

func (r *Renderer) ErrorPanel(message string) error {
	_, err := fmt.Fprintf(r.w, "Oops! Something went wrong\n%s\nType 'retry' to try again.\n", message)
	return err
}

// Tasks prints the count line and either the empty state or a numbered
// table. The row numbers are 1-based indexes into list.Items.
func (r *Renderer) Tasks(list List, pendingDelete string) error {
	if _, err := fmt.Fprintln(r.w, list.CountLabel()); err != nil {
		return err
	}
	if list.Empty() != EmptyNone {
		_, err := fmt.Fprintf(r.w, "No tasks found\n%s\n", list.EmptyMessage())
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTATUS\tTITLE\tCREATED\tDESCRIPTION\t")
	for i, task := range list.Items {
		card := NewCard(task, r.loc)
		marker := ""
		if task.ID == pendingDelete {
			marker = " (delete again to confirm)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s%s\t%s\t%s\t\n",
			i+1, card.Status, card.Title, marker, card.Date, preview(card.Description))
	}
	return tw.Flush()
}

// Card prints a single task in full.
func (r *Renderer) Card(card Card) error {
	_, err := fmt.Fprintf(r.w, "[%s] %s\n%s\nCreated %s\n", card.Status, card.Title, card.Description, card.Date)
	return err
}

func (r *Renderer) Stats(s Stats) error {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total\t%d\n", s.Total)
	fmt.Fprintf(tw, "Pending\t%d\n", s.Pending)
	fmt.Fprintf(tw, "In Progress\t%d\n", s.InProgress)
	fmt.Fprintf(tw, "Completed\t%d\n", s.Completed)
	return tw.Flush()
}

func (r *Renderer) FormErrors(errs FormErrors) error {
	var lines []string
	if errs.Title != "" {
		lines = append(lines, "  title: "+errs.Title)
	}
	if errs.Description != "" {
		lines = append(lines, "  description: "+errs.Description)
	}
	if len(lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(r.w, strings.Join(lines, "\n"))
	return err
}

func (r *Renderer) Alert(message string) error {
	_, err := fmt.Fprintf(r.w, "! %s\n", message)
	return err
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= descriptionPreview {
		return s
	}
	runes := []rune(s)
	return string(runes[:descriptionPreview-3]) + "..."
}
