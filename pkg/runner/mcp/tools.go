package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListProjectsTool(srv, svc)
	registerListTemplatesTool(srv, svc)
	registerCreateProjectTool(srv, svc)
	registerSetFinalDeadlineTool(srv, svc)
	registerActivateTriggerTool(srv, svc)
	registerCompleteSubDeadlineTool(srv, svc)
	registerUpcomingTool(srv, svc)
}

func registerListProjectsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_projects",
		mcp.WithDescription("List every project with its final deadline and progress."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projects, err := svc.ListProjects(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"projects": projects,
			"count":    len(projects),
		})
	})
}

func registerListTemplatesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_templates",
		mcp.WithDescription("List project templates with their relative offsets and triggers."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		templates, err := svc.ListTemplates(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"templates": templates,
			"count":     len(templates),
		})
	})
}

func registerCreateProjectTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_project",
		mcp.WithDescription("Create a project. With a template, sub-deadlines and triggers are derived from the final deadline."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Project title."),
		),
		mcp.WithString("final_deadline",
			mcp.Required(),
			mcp.Description("Final deadline as YYYY-MM-DD or an RFC3339 timestamp."),
		),
		mcp.WithString("template",
			mcp.Description("Optional template id or name."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Title         string `json:"title"`
			FinalDeadline string `json:"final_deadline"`
			Template      string `json:"template"`
		}

		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.CreateProject(ctx, CreateProjectOptions{
			Title:         args.Title,
			FinalDeadline: args.FinalDeadline,
			Template:      args.Template,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetFinalDeadlineTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_final_deadline",
		mcp.WithDescription("Move a project's final deadline. Template-derived dates follow; manual sub-deadlines keep their dates."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project id, id prefix or title."),
		),
		mcp.WithString("final_deadline",
			mcp.Required(),
			mcp.Description("New final deadline as YYYY-MM-DD or an RFC3339 timestamp."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ref, err := request.RequireString("project")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		date, err := request.RequireString("final_deadline")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.SetFinalDeadline(ctx, ref, date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerActivateTriggerTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"activate_trigger",
		mcp.WithDescription("Mark a project trigger as satisfied, or clear it, which unblocks or re-blocks the sub-deadlines it gates."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project id, id prefix or title."),
		),
		mcp.WithString("trigger",
			mcp.Required(),
			mcp.Description("Trigger id, id prefix or name."),
		),
		mcp.WithString("state",
			mcp.Description("Target state; defaults to active."),
			mcp.Enum("active", "inactive"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ref, err := request.RequireString("project")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		trigger, err := request.RequireString("trigger")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		active := request.GetString("state", "active") != "inactive"

		dto, err := svc.SetTrigger(ctx, ref, trigger, active)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCompleteSubDeadlineTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"complete_sub_deadline",
		mcp.WithDescription("Mark a sub-deadline as completed, or reopen it."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project id, id prefix or title."),
		),
		mcp.WithString("sub_deadline",
			mcp.Required(),
			mcp.Description("Sub-deadline id, id prefix or title."),
		),
		mcp.WithString("state",
			mcp.Description("Target state; defaults to completed."),
			mcp.Enum("completed", "open"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ref, err := request.RequireString("project")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sub, err := request.RequireString("sub_deadline")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		done := request.GetString("state", "completed") != "open"

		dto, err := svc.CompleteSubDeadline(ctx, ref, sub, done)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpcomingTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"upcoming_deadlines",
		mcp.WithDescription("List open sub-deadlines due within a window, including overdue ones, flagged when blocked by an inactive trigger."),
		mcp.WithString("window",
			mcp.Description("Look-ahead window such as 2w, 10d or 1w3d. Defaults to 2w."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		window := request.GetString("window", "")
		items, label, err := svc.Upcoming(ctx, window)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"window": label,
			"items":  items,
			"count":  len(items),
		})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
