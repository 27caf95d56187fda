// Package tasks_tools provides MCP tools for Google Tasks.
//
// # Available Tools
//
//   - list_task_lists: List the user's task lists
//   - list_tasks: List tasks in a task list, optionally filtered by due date
//   - get_task: Get a single task
//   - create_task: Create a task or subtask
//   - complete_task: Mark one or more tasks as completed
//   - update_task: Change title, notes, due date or status
//   - delete_task: Delete one or more tasks
//
// Only the list and get tools are registered in read-only mode.
package tasks_tools
