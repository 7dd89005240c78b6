// Package cli is an interactive terminal client for the to-do server.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/dmitrijs2005/gophtodo/internal/client/api"
	"github.com/dmitrijs2005/gophtodo/internal/client/config"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// TodoClient is the part of api.Client the CLI uses.
type TodoClient interface {
	Register(ctx context.Context, username, email string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (string, error)
	SetToken(token string)
	UserInfo(ctx context.Context) (*api.Profile, error)
	ListTasks(ctx context.Context) ([]api.Task, error)
	CreateTask(ctx context.Context, t api.NewTask) (*api.Task, error)
	UpdateTask(ctx context.Context, id int64, patch api.TaskPatch) (*api.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

type App struct {
	client   TodoClient
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		client: api.NewClient(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the to-do CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", a.userName)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

// report prints err in user terms and returns it unchanged.
func (a *App) report(err error) error {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case api.IsStatus(err, http.StatusUnauthorized):
		fmt.Fprintln(a.out, "Session expired, please login again")
		a.userName = ""
		a.client.SetToken("")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}

func (a *App) Register(ctx context.Context) error {
	userName, err := a.askRequired("User name")
	if err != nil {
		return a.report(err)
	}
	email, err := a.askRequired("Email")
	if err != nil {
		return a.report(err)
	}
	password, err := a.askPassword()
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, userName, email, password); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Registered, you can login now")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, err := a.askRequired("User name")
	if err != nil {
		return a.report(err)
	}
	password, err := a.askPassword()
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	name, err := a.client.Login(ctx, userName, password)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			fmt.Fprintln(a.out, "Login unsuccessful: invalid credentials")
			return err
		}
		return a.report(err)
	}

	a.userName = name
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	a.client.SetToken("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	p, err := a.client.UserInfo(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "%s <%s>, member since %s\n", p.Username, p.Email, p.CreatedAt.Format("2006-01-02"))
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.client.ListTasks(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return nil
	}

	for _, t := range list {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("%4d [%s] %s", t.ID, mark, t.Text)
		if t.Tag != "" {
			line += " #" + t.Tag
		}
		if n := len(t.Checklist); n > 0 {
			line += fmt.Sprintf(" (%d checklist items)", n)
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func (a *App) Add(ctx context.Context) error {
	text, err := a.askRequired("Task text")
	if err != nil {
		return a.report(err)
	}
	tag, err := a.ask("Tag (optional)")
	if err != nil {
		return a.report(err)
	}
	description, err := a.askLines("Description (optional)")
	if err != nil {
		return a.report(err)
	}

	t, err := a.client.CreateTask(ctx, api.NewTask{Text: text, Tag: tag, Description: description})
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Added task %d\n", t.ID)
	return nil
}

func (a *App) SetCompleted(ctx context.Context, id string, completed bool) error {
	taskID, err := parseID(id)
	if err != nil {
		return a.report(err)
	}

	if _, err := a.client.UpdateTask(ctx, taskID, api.TaskPatch{Completed: &completed}); err != nil {
		return a.report(err)
	}

	if completed {
		fmt.Fprintf(a.out, "Task %d done\n", taskID)
	} else {
		fmt.Fprintf(a.out, "Task %d reopened\n", taskID)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	taskID, err := parseID(id)
	if err != nil {
		return a.report(err)
	}

	if err := a.client.DeleteTask(ctx, taskID); err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Task %d deleted\n", taskID)
	return nil
}

var errBadID = errors.New("task id must be a positive number")

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}
