package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/taskpilot/taskpilot/internal/client"
	"github.com/taskpilot/taskpilot/internal/task"
)

var (
	app       = kingpin.New("taskpilot", "Natural language todo list")
	serverURL = app.Flag("server", "Server base URL").Default("http://localhost:3200").Envar("TASKPILOT_SERVER").String()

	// Account commands
	registerCmd   = app.Command("register", "Create an account and log in")
	registerEmail = registerCmd.Flag("email", "Account email").Required().String()
	registerName  = registerCmd.Flag("name", "Display name").String()
	registerPass  = registerCmd.Flag("password", "Account password").Required().String()

	loginCmd   = app.Command("login", "Log in to an existing account")
	loginEmail = loginCmd.Flag("email", "Account email").Required().String()
	loginPass  = loginCmd.Flag("password", "Account password").Required().String()

	// Chat command
	chatCmd     = app.Command("chat", "Talk to the assistant ('add a task to buy groceries')")
	chatMessage = chatCmd.Arg("message", "Message text").Required().Strings()

	// Task commands
	taskCmd = app.Command("task", "Task management commands")

	taskAddCmd      = taskCmd.Command("add", "Add a task")
	taskAddTitle    = taskAddCmd.Arg("title", "Task title").Required().Strings()
	taskAddPriority = taskAddCmd.Flag("priority", "low, medium or high").String()
	taskAddDue      = taskAddCmd.Flag("due", "Due date (YYYY-MM-DD)").String()

	taskListCmd      = taskCmd.Command("list", "List tasks")
	taskListStatus   = taskListCmd.Flag("status", "Filter by status").String()
	taskListPriority = taskListCmd.Flag("priority", "Filter by priority").String()

	taskCompleteCmd    = taskCmd.Command("complete", "Mark a task completed")
	taskCompleteID     = taskCompleteCmd.Arg("id", "Task ID").Required().String()
	taskCompleteReopen = taskCompleteCmd.Flag("reopen", "Reset the task to pending instead").Bool()

	taskDeleteCmd = taskCmd.Command("delete", "Delete a task")
	taskDeleteID  = taskDeleteCmd.Arg("id", "Task ID").Required().String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(*serverURL)

	var err error
	switch command {
	case registerCmd.FullCommand():
		err = handleRegister(ctx, c)
	case loginCmd.FullCommand():
		err = handleLogin(ctx, c)
	case chatCmd.FullCommand():
		err = handleChat(ctx, c)
	case taskAddCmd.FullCommand():
		err = handleTaskAdd(ctx, c)
	case taskListCmd.FullCommand():
		err = handleTaskList(ctx, c)
	case taskCompleteCmd.FullCommand():
		err = handleTaskComplete(ctx, c)
	case taskDeleteCmd.FullCommand():
		err = handleTaskDelete(ctx, c)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func handleRegister(ctx context.Context, c *client.Client) error {
	res, err := c.Register(ctx, *registerEmail, *registerName, *registerPass)
	if err != nil {
		return err
	}
	if err := client.SaveSession(&client.Session{UserID: res.UserID, Token: res.Token}); err != nil {
		return err
	}
	color.Green("Account created, you are logged in as %s", *registerEmail)
	return nil
}

func handleLogin(ctx context.Context, c *client.Client) error {
	res, err := c.Login(ctx, *loginEmail, *loginPass)
	if err != nil {
		return err
	}
	if err := client.SaveSession(&client.Session{UserID: res.UserID, Token: res.Token}); err != nil {
		return err
	}
	color.Green("Logged in as %s", *loginEmail)
	return nil
}

func handleChat(ctx context.Context, c *client.Client) error {
	s, err := authenticate(c)
	if err != nil {
		return err
	}
	res, err := c.Chat(ctx, s.UserID, strings.Join(*chatMessage, " "))
	if err != nil {
		return err
	}
	fmt.Println(res.Response)
	if res.Result != nil && res.Result.List != nil {
		printTasks(res.Result.List.Tasks)
	}
	return nil
}

func handleTaskAdd(ctx context.Context, c *client.Client) error {
	s, err := authenticate(c)
	if err != nil {
		return err
	}
	t, err := c.AddTask(ctx, s.UserID, client.AddTaskParams{
		Title:    strings.Join(*taskAddTitle, " "),
		Priority: *taskAddPriority,
		DueDate:  *taskAddDue,
	})
	if err != nil {
		return err
	}
	color.Green("Task '%s' has been added successfully", t.Title)
	fmt.Printf("  id: %s\n", t.ID)
	return nil
}

func handleTaskList(ctx context.Context, c *client.Client) error {
	s, err := authenticate(c)
	if err != nil {
		return err
	}
	tasks, err := c.ListTasks(ctx, s.UserID, *taskListStatus, *taskListPriority)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}
	printTasks(tasks)
	return nil
}

func handleTaskComplete(ctx context.Context, c *client.Client) error {
	s, err := authenticate(c)
	if err != nil {
		return err
	}
	t, err := c.CompleteTask(ctx, s.UserID, *taskCompleteID, !*taskCompleteReopen)
	if err != nil {
		return err
	}
	if *taskCompleteReopen {
		color.Yellow("Task '%s' has been marked as pending", t.Title)
	} else {
		color.Green("Task '%s' has been completed", t.Title)
	}
	return nil
}

func handleTaskDelete(ctx context.Context, c *client.Client) error {
	s, err := authenticate(c)
	if err != nil {
		return err
	}
	msg, err := c.DeleteTask(ctx, s.UserID, *taskDeleteID)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func authenticate(c *client.Client) (*client.Session, error) {
	s, err := client.LoadSession()
	if err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return s, nil
}

func printTasks(tasks []*task.Task) {
	for _, t := range tasks {
		marker := "[ ]"
		if t.Status == task.StatusCompleted {
			marker = "[x]"
		} else if t.Status == task.StatusInProgress {
			marker = "[~]"
		}
		line := fmt.Sprintf("%s %s", marker, t.Title)
		switch t.Priority {
		case task.PriorityHigh:
			line = color.RedString(line)
		case task.PriorityLow:
			line = color.HiBlackString(line)
		}
		if t.DueDate != nil {
			line += color.CyanString(" (due %s)", t.DueDate.Format("2006-01-02"))
		}
		fmt.Printf("%s\n    id: %s\n", line, t.ID)
	}
}
