package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerProjectsResource(srv, svc)
	registerProjectTemplate(srv, svc)
	registerTemplatesResource(srv, svc)
}

func registerProjectsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"deadlines://projects",
		"Projects",
		mcp.WithResourceDescription("All projects with final deadlines and progress."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		summaries, err := svc.ListProjects(ctx)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"projects": summaries,
			"count":    len(summaries),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerProjectTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"deadlines://projects/{id}",
		"Project Details",
		mcp.WithTemplateDescription("A project with its sub-deadlines, subtasks and triggers."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, _ := request.Params.Arguments["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("project id is required")
		}

		dto, err := svc.Project(ctx, id)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"project": dto,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerTemplatesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"deadlines://templates",
		"Templates",
		mcp.WithResourceDescription("Project templates with relative offsets and trigger definitions."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		templates, err := svc.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"templates": templates,
			"count":     len(templates),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
