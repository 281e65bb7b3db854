package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"agora/internal/comments"
	"agora/internal/feed"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the agora command tree over a.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "agora [command] [flags]",
		Short:         "agora: read and write the forum from your terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	root.AddCommand(
		loginCmd(a),
		registerCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		postsCmd(a),
		feedCmd(a),
		postCmd(a),
		commentsCmd(a),
		commentCmd(a),
		messagesCmd(a),
	)
	return root
}

// Execute runs root and prints a failure in red. It returns the process
// exit code.
func Execute(ctx context.Context, root *cobra.Command, a *App) int {
	if err := root.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(a.Err, errorText(err))
		return 1
	}
	return 0
}

// errorText returns what the user should see for err.
func errorText(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func loginCmd(a *App) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username|email>",
		Short: "Sign in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.Auth.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.Out, "Signed in as %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func registerCmd(a *App) *cobra.Command {
	var in service.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.Auth.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.Out, "Registered %s. Run `agora login %s` to sign in.\n", user.Username, user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "username, 5-20 letters or digits")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "password")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm", "", "password again")
	return cmd
}

func logoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			a.printf("Signed out\n")
			return nil
		},
	}
}

func whoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := a.Auth.CurrentUser()
			if user == nil || !a.Auth.IsLoggedIn(cmd.Context()) {
				a.printf("Not signed in\n")
				return nil
			}
			a.printf("%s <%s> (id %d)\n", user.Username, user.Email, user.ID)
			return nil
		},
	}
}

func postsCmd(a *App) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List published posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.Content.GetPosts(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			renderPostTable(a.Out, result)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&size, "size", service.DefaultPageSize, "posts per page")
	return cmd
}

func feedCmd(a *App) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show a page of posts with their comment threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := feed.New(a.Content, feed.WithPageSize(size), feed.WithPage(page))
			if err := f.Load(cmd.Context()); err != nil {
				return err
			}
			renderFeed(a.Out, f)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&size, "size", service.DefaultPageSize, "posts per page")
	return cmd
}

func postCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Show or create a post",
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a post and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			post, err := a.Content.GetPost(cmd.Context(), id)
			if err != nil {
				return err
			}
			list, err := a.Content.GetComments(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderPost(a.Out, post)
			renderComments(a.Out, comments.BuildTree(list))
			return nil
		},
	}

	var in service.CreatePostInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user := a.Auth.CurrentUser(); user != nil {
				in.AuthorID = user.ID
			}
			post, err := a.Content.CreatePost(cmd.Context(), in)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.Out, "Created post %d\n", post.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&in.Title, "title", "t", "", "post title")
	create.Flags().StringVarP(&in.Content, "content", "c", "", "post body")

	cmd.AddCommand(show, create)
	return cmd
}

func commentsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comments <postId>",
		Short: "Show the comment threads of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			list, err := a.Content.GetComments(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderComments(a.Out, comments.BuildTree(list))
			return nil
		},
	}
}

func commentCmd(a *App) *cobra.Command {
	var content string
	var parent int64
	cmd := &cobra.Command{
		Use:   "comment <postId>",
		Short: "Comment on a post, or reply with --parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var parentID *int64
			if parent > 0 {
				parentID = &parent
			}
			c, err := a.Content.AddComment(cmd.Context(), id, content, parentID)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.Out, "Added comment %d\n", c.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&content, "content", "c", "", "comment text")
	cmd.Flags().Int64Var(&parent, "parent", 0, "id of the comment to reply to")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func messagesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Read or write the guestbook",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show guestbook threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := a.Messages.List(cmd.Context())
			if err != nil {
				return err
			}
			renderMessages(a.Out, msgs)
			return nil
		},
	}

	var content string
	var parent int64
	reply := &cobra.Command{
		Use:   "reply",
		Short: "Post a message, or reply to one with --parent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Messages.Reply(cmd.Context(), content, parent); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(a.Out, "Message posted")
			return nil
		},
	}
	reply.Flags().StringVarP(&content, "content", "c", "", "message text")
	reply.Flags().Int64Var(&parent, "parent", 0, "id of the message to reply to, 0 for a new thread")
	_ = reply.MarkFlagRequired("content")

	cmd.AddCommand(list, reply)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
