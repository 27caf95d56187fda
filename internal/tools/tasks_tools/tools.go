package tasks_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/registry"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tasks"
	"github.com/teemow/workspace-mcp/internal/tools/batch"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const service = "tasks"

func getTasksClient(ctx context.Context, sc *server.ServerContext, account string) (*tasks.Client, error) {
	opts, err := sc.ClientOptionsForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return tasks.NewClient(ctx, opts...)
}

// RegisterTasksTools registers all Tasks tools with s
func RegisterTasksTools(s registry.ToolAdder, sc *server.ServerContext, readOnly bool) error {
	if sc == nil {
		return fmt.Errorf("server context is required")
	}

	listTaskListsTool := mcp.NewTool("list_task_lists",
		mcp.WithDescription("List all task lists of the user"),
		common.WithUserEmail(),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of task lists to return (default: 100)"),
		),
	)
	s.AddTool(listTaskListsTool, common.InstrumentedToolHandler("list_task_lists", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := getTasksClient(ctx, sc, common.AccountFromArgs(ctx, request.GetArguments()))
			if err != nil {
				return common.ErrorResult("create Tasks client", err)
			}

			lists, err := client.ListTaskLists(ctx, int64(request.GetInt("max_results", 100)))
			if err != nil {
				return common.ErrorResult("list task lists", err)
			}
			return common.JSONResult(lists)
		}))

	listTasksTool := mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks in a task list"),
		common.WithUserEmail(),
		mcp.WithString("task_list_id",
			mcp.Description("Task list ID (default: the user's default list)"),
		),
		mcp.WithBoolean("show_completed",
			mcp.Description("Include completed tasks (default: false)"),
		),
		mcp.WithString("due_min",
			mcp.Description("Only tasks due at or after this time (RFC 3339 or YYYY-MM-DD)"),
		),
		mcp.WithString("due_max",
			mcp.Description("Only tasks due before this time (RFC 3339 or YYYY-MM-DD)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of tasks to return (default: 100)"),
		),
	)
	s.AddTool(listTasksTool, common.InstrumentedToolHandler("list_tasks", service, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			dueMin, err := common.ParseTime(request.GetString("due_min", ""))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			dueMax, err := common.ParseTime(request.GetString("due_max", ""))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getTasksClient(ctx, sc, common.AccountFromArgs(ctx, request.GetArguments()))
			if err != nil {
				return common.ErrorResult("create Tasks client", err)
			}

			list, err := client.ListTasks(ctx, request.GetString("task_list_id", ""), tasks.ListOptions{
				ShowCompleted: request.GetBool("show_completed", false),
				DueMin:        dueMin,
				DueMax:        dueMax,
				MaxResults:    int64(request.GetInt("max_results", 100)),
			})
			if err != nil {
				return common.ErrorResult("list tasks", err)
			}
			return common.JSONResult(list)
		}))

	getTaskTool := mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task with its notes, links and subtask parent"),
		common.WithUserEmail(),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task"),
		),
		mcp.WithString("task_list_id",
			mcp.Description("Task list ID (default: the user's default list)"),
		),
	)
	s.AddTool(getTaskTool, common.InstrumentedToolHandler("get_task", service, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID := request.GetString("task_id", "")
			if taskID == "" {
				return mcp.NewToolResultError("task_id is required"), nil
			}

			client, err := getTasksClient(ctx, sc, common.AccountFromArgs(ctx, request.GetArguments()))
			if err != nil {
				return common.ErrorResult("create Tasks client", err)
			}

			task, err := client.GetTask(ctx, request.GetString("task_list_id", ""), taskID)
			if err != nil {
				return common.ErrorResult("get task", err)
			}
			return common.JSONResult(task)
		}))

	if readOnly {
		return nil
	}

	createTaskTool := mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task"),
		common.WithUserEmail(),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the task"),
		),
		mcp.WithString("task_list_id",
			mcp.Description("Task list ID (default: the user's default list)"),
		),
		mcp.WithString("notes",
			mcp.Description("Notes for the task"),
		),
		mcp.WithString("due",
			mcp.Description("Due date (RFC 3339 or YYYY-MM-DD)"),
		),
		mcp.WithString("parent",
			mcp.Description("Parent task ID to create a subtask"),
		),
		mcp.WithString("previous",
			mcp.Description("Sibling task ID to insert the task after"),
		),
	)
	s.AddTool(createTaskTool, common.InstrumentedToolHandler("create_task", service, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := request.RequireString("title")
			if err != nil || title == "" {
				return mcp.NewToolResultError("title is required"), nil
			}
			due, err := common.ParseTime(request.GetString("due", ""))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getTasksClient(ctx, sc, common.AccountFromArgs(ctx, request.GetArguments()))
			if err != nil {
				return common.ErrorResult("create Tasks client", err)
			}

			task, err := client.CreateTask(ctx, request.GetString("task_list_id", ""), tasks.TaskInput{
				Title:    title,
				Notes:    request.GetString("notes", ""),
				Due:      due,
				Parent:   request.GetString("parent", ""),
				Previous: request.GetString("previous", ""),
			})
			if err != nil {
				return common.ErrorResult("create task", err)
			}
			return common.JSONResultWithMessage("Task created successfully:", task)
		}))

	completeTaskTool := mcp.NewTool("complete_task",
		mcp.WithDescription("Mark one or more tasks as completed"),
		common.WithUserEmail(),
		batch.WithIDs("task_id", "Task ID, a comma-separated list or an array of task IDs"),
		mcp.WithString("task_list_id",
			mcp.Description("Task list ID (default: the user's default list)"),
		),
	)
	s.AddTool(completeTaskTool, common.InstrumentedToolHandler("complete_task", service, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskIDs, err := batch.ParseIDs(request.GetArguments()["task_id"], "task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getTasksClient(ctx, sc, common.AccountFromArgs(ctx, request.GetArguments()))
			if err != nil {
				return common.ErrorResult("create Tasks client", err)
			}
			listID := request.GetString("task_list_id", "")

			if len(taskIDs) == 1 {
				task, err := client.CompleteTask(ctx, listID, taskIDs[0])
				if err != nil {
					return common.ErrorResult("complete task", err)
				}
				return common.JSONResultWithMessage("Task marked as completed:", task)
			}

			report := batch.Run(ctx, taskIDs, func(ctx context.Context, id string) (any, error) {
				return client.CompleteTask(ctx, listID, id)
			})
			return common.JSONResultWithMessage(report.Summary("Completed", "tasks"), report)
		}))

	updateTaskTool := mcp.NewTool("update_task",
		mcp.WithDescription("Change the title, notes, due date or status of a task"),
		common.WithUserEmail(),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task"),
		),
		mcp.WithString("task_list_id",
			mcp.Description("Task list ID (default: the user's default list)"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("notes",
			mcp.Description("New notes, an empty string removes them"),
		),
		mcp.WithString("due",
			mcp.Description("New due date (RFC 3339 or YYYY-MM-DD), an empty string removes it"),
		),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum(tasks.StatusNeedsAction, tasks.StatusCompleted),
		),
	)
	s.AddTool(updateTaskTool, common.InstrumentedToolHandler("update_task", service, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			taskID := request.GetString("task_id", "")
			if taskID == "" {
				return mcp.NewToolResultError("task_id is required"), nil
			}

			patch, err := taskPatchFromArgs(args)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if patch.IsEmpty() {
				return mcp.NewToolResultError("at least one of title, notes, due or status is required"), nil
			}

			client, err := getTasksClient(ctx, sc, common.AccountFromArgs(ctx, args))
			if err != nil {
				return common.ErrorResult("create Tasks client", err)
			}

			task, err := client.UpdateTask(ctx, request.GetString("task_list_id", ""), taskID, patch)
			if err != nil {
				return common.ErrorResult("update task", err)
			}
			return common.JSONResultWithMessage("Task updated:", task)
		}))

	deleteTaskTool := mcp.NewTool("delete_task",
		mcp.WithDescription("Delete one or more tasks"),
		mcp.WithDestructiveHintAnnotation(true),
		common.WithUserEmail(),
		batch.WithIDs("task_id", "Task ID, a comma-separated list or an array of task IDs"),
		mcp.WithString("task_list_id",
			mcp.Description("Task list ID (default: the user's default list)"),
		),
	)
	s.AddTool(deleteTaskTool, common.InstrumentedToolHandler("delete_task", service, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskIDs, err := batch.ParseIDs(request.GetArguments()["task_id"], "task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getTasksClient(ctx, sc, common.AccountFromArgs(ctx, request.GetArguments()))
			if err != nil {
				return common.ErrorResult("create Tasks client", err)
			}
			listID := request.GetString("task_list_id", "")

			if len(taskIDs) == 1 {
				if err := client.DeleteTask(ctx, listID, taskIDs[0]); err != nil {
					return common.ErrorResult("delete task", err)
				}
				return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted", taskIDs[0])), nil
			}

			report := batch.Run(ctx, taskIDs, func(ctx context.Context, id string) (any, error) {
				return nil, client.DeleteTask(ctx, listID, id)
			})
			return common.JSONResultWithMessage(report.Summary("Deleted", "tasks"), report)
		}))

	return nil
}

// taskPatchFromArgs only sets the fields present in args, so an explicit
// empty notes or due value clears the field.
func taskPatchFromArgs(args map[string]any) (tasks.TaskPatch, error) {
	var patch tasks.TaskPatch
	if v, ok := args["title"].(string); ok && v != "" {
		patch.Title = &v
	}
	if v, ok := args["notes"].(string); ok {
		patch.Notes = &v
	}
	if v, ok := args["due"].(string); ok {
		due, err := common.ParseTime(v)
		if err != nil {
			return tasks.TaskPatch{}, err
		}
		patch.Due = &due
	}
	if v, ok := args["status"].(string); ok {
		patch.Status = v
	}
	return patch, nil
}
