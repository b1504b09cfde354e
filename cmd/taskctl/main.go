package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AndriyMV/task-manager-bot/internal/taskapi"
	"github.com/AndriyMV/task-manager-bot/types"
)

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Operational CLI for the task manager API and bot",
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerTaskCommands()
	registerBotCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TASKGRAM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("api", "http://localhost:8080/api", "task API base URL")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("api", rootCmd.PersistentFlags().Lookup("api"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func client() *taskapi.Client {
	return taskapi.New(viper.GetString("api"))
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func formatDue(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02.01.2006 15:04")
}

func renderTasks(tasks []*types.Task) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "User", "Title", "Status", "Priority", "Due"})
	for _, t := range tasks {
		tw.AppendRow(table.Row{t.ID, t.UserID, t.Title, t.Status, t.Priority, formatDue(t.DueDate)})
	}
	tw.Render()
}

func registerTaskCommands() {
	taskCmd := &cobra.Command{Use: "task", Short: "Task operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.TaskFilter{}
			filter.UserID, _ = cmd.Flags().GetInt64("user")
			status, _ := cmd.Flags().GetString("status")
			filter.Status = types.TaskStatus(status)
			priority, _ := cmd.Flags().GetString("priority")
			filter.Priority = types.TaskPriority(priority)
			filter.Query, _ = cmd.Flags().GetString("query")

			tasks, err := client().ListTasks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(tasks)
			}
			renderTasks(tasks)
			return nil
		},
	}
	listCmd.Flags().Int64("user", 0, "filter by user id")
	listCmd.Flags().String("status", "", "filter by status")
	listCmd.Flags().String("priority", "", "filter by priority")
	listCmd.Flags().String("query", "", "substring search over title and description")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task with its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			c := client()
			task, err := c.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			attachments, err := c.ListAttachments(cmd.Context(), id)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"task": task, "attachments": attachments})
			}
			renderTasks([]*types.Task{task})
			if task.Description != "" {
				fmt.Println("Description:", task.Description)
			}
			if len(attachments) > 0 {
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Type", "Name", "MIME"})
				for _, a := range attachments {
					tw.AppendRow(table.Row{a.ID, a.Type, a.OriginalName, a.MimeType})
				}
				tw.Render()
			}
			return nil
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetInt64("user")
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			status, _ := cmd.Flags().GetString("status")
			priority, _ := cmd.Flags().GetString("priority")
			due, _ := cmd.Flags().GetString("due")

			task := &types.Task{
				UserID:      userID,
				Title:       title,
				Description: description,
				Status:      types.TaskStatus(status),
				Priority:    types.TaskPriority(priority),
			}
			if due != "" {
				t, err := time.Parse(time.RFC3339, due)
				if err != nil {
					return fmt.Errorf("invalid --due %q, want RFC 3339", due)
				}
				task.DueDate = &t
			}
			if err := client().CreateTask(cmd.Context(), task); err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(task)
			}
			renderTasks([]*types.Task{task})
			return nil
		},
	}
	createCmd.Flags().Int64("user", 0, "owner user id (required)")
	createCmd.Flags().String("title", "", "task title (required)")
	createCmd.Flags().String("description", "", "task description")
	createCmd.Flags().String("status", "pending", "task status")
	createCmd.Flags().String("priority", "medium", "task priority")
	createCmd.Flags().String("due", "", "due date, RFC 3339")
	_ = createCmd.MarkFlagRequired("user")
	_ = createCmd.MarkFlagRequired("title")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			if err := client().DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("deleted", id)
			return nil
		},
	}

	taskCmd.AddCommand(listCmd, showCmd, createCmd, deleteCmd)
	rootCmd.AddCommand(taskCmd)
}

// registerBotCommands pushes the slash command menu to Telegram so
// clients show completion for the six bot commands.
func registerBotCommands() {
	cmd := &cobra.Command{
		Use:   "register-commands",
		Short: "Register the bot command menu with Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := viper.GetString("bot-token")
			if token == "" {
				token = os.Getenv("BOT_TOKEN")
			}
			if token == "" {
				return fmt.Errorf("bot token required (--bot-token or BOT_TOKEN)")
			}
			b, err := bot.New(token)
			if err != nil {
				return err
			}
			ok, err := b.SetMyCommands(cmd.Context(), &bot.SetMyCommandsParams{
				Commands: []models.BotCommand{
					{Command: "start", Description: "Запуск бота та реєстрація користувача"},
					{Command: "help", Description: "Довідка по командам бота"},
					{Command: "tasks", Description: "Переглянути всі ваші задачі"},
					{Command: "create", Description: "Створити нову задачу"},
					{Command: "search", Description: "Пошук задач за назвою чи описом"},
					{Command: "filter", Description: "Фільтрація задач"},
				},
			})
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("telegram rejected the command list")
			}
			fmt.Println("commands registered")
			return nil
		},
	}
	cmd.Flags().String("bot-token", "", "Telegram bot token")
	_ = viper.BindPFlag("bot-token", cmd.Flags().Lookup("bot-token"))
	rootCmd.AddCommand(cmd)
}
