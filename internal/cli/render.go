package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"agora/internal/feed"
	"agora/internal/models"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

const timeLayout = "2006-01-02 15:04"

func renderPostTable(w io.Writer, page *models.Page[models.Post]) {
	if len(page.Content) == 0 {
		fmt.Fprintln(w, "No posts yet")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Author", "Comments", "Views", "Created"})
	table.SetAutoWrapText(false)
	for _, p := range page.Content {
		table.Append([]string{
			strconv.FormatInt(p.ID, 10),
			p.Title,
			p.AuthorUsername,
			strconv.FormatInt(p.CommentCount, 10),
			strconv.FormatInt(p.ViewCount, 10),
			formatTime(p.CreatedAt),
		})
	}
	table.Render()
	fmt.Fprintf(w, "Page %d of %d (%d posts)\n", page.Number+1, max(page.TotalPages, 1), page.TotalElements)
}

func renderPost(w io.Writer, p *models.Post) {
	color.New(color.Bold).Fprintf(w, "#%d %s\n", p.ID, p.Title)
	fmt.Fprintf(w, "by %s on %s, %d views\n\n", p.AuthorUsername, formatTime(p.CreatedAt), p.ViewCount)
	fmt.Fprintln(w, p.Content)
	fmt.Fprintln(w)
}

func renderComments(w io.Writer, forest []*models.Comment) {
	if len(forest) == 0 {
		fmt.Fprintln(w, "  No comments")
		return
	}
	for _, c := range forest {
		renderComment(w, c, 1)
	}
}

func renderComment(w io.Writer, c *models.Comment, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s[%d] %s: %s\n", indent, c.ID, color.CyanString(c.Username), c.Content)
	for _, r := range c.Replies {
		renderComment(w, r, depth+1)
	}
}

func renderFeed(w io.Writer, f *feed.Feed) {
	posts := f.Posts()
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts yet")
		return
	}
	for i := range posts {
		p := posts[i]
		renderPost(w, &p)
		if err := f.CommentError(p.ID); err != nil {
			color.New(color.FgRed).Fprintf(w, "  Comments unavailable: %s\n", errorText(err))
		} else {
			renderComments(w, f.Comments(p.ID))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Page %d of %d\n", f.Page()+1, max(f.TotalPages(), 1))
}

func renderMessages(w io.Writer, msgs []*models.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages yet")
		return
	}
	for _, m := range msgs {
		renderMessage(w, m, 0)
	}
}

func renderMessage(w io.Writer, m *models.Message, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s[%d] %s (%s): %s\n", indent, m.ID, color.CyanString(m.Username), formatTime(m.CreateTime), m.Content)
	for _, child := range m.Children {
		renderMessage(w, child, depth+1)
	}
}

func formatTime(t models.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
