// Package report renders task reports as downloadable PDF and DOCX
// documents, localized to English or Arabic. Report data comes from the
// task store; this module only formats it.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/creativity-code/planora/modules/taskstore"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskReporter is the slice of the task store the report module needs.
type TaskReporter interface {
	Report(ctx context.Context, req taskstore.ReportRequest) (taskstore.ReportResponse, error)
}

// Module wires the renderers into the application.
type Module struct {
	tasks TaskReporter
	pdf   *PDFRenderer
	docx  *DOCXRenderer
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new report module. An optional Unicode TTF font for
// PDF output is read from PLANORA_REPORT_FONT.
func NewModule() *Module {
	return &Module{
		pdf:  NewPDFRenderer(os.Getenv("PLANORA_REPORT_FONT")),
		docx: NewDOCXRenderer(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "report"
}

// Dependencies declares the modules this module needs.
func (m *Module) Dependencies() []string {
	return []string{"taskstore"}
}

// SetDependencyServiceContainer receives dependency service containers.
func (m *Module) SetDependencyServiceContainer(dep string, container mono.ServiceContainer) {
	if dep == "taskstore" {
		m.tasks = taskstore.NewAdapter(container)
	}
}

// Start checks that dependencies were wired.
func (m *Module) Start(_ context.Context) error {
	if m.tasks == nil {
		return fmt.Errorf("taskstore dependency not set")
	}
	log.Println("[report] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[report] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// RegisterServices registers request/reply services with the container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "export-pdf", json.Unmarshal, json.Marshal, m.handleExportPDF,
	); err != nil {
		return fmt.Errorf("failed to register export-pdf service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "export-docx", json.Unmarshal, json.Marshal, m.handleExportDOCX,
	); err != nil {
		return fmt.Errorf("failed to register export-docx service: %w", err)
	}

	log.Println("[report] Registered services: export-pdf, export-docx")
	return nil
}

func (m *Module) handleExportPDF(ctx context.Context, req ExportRequest, _ *mono.Msg) (ExportResponse, error) {
	rep, err := m.tasks.Report(ctx, taskstore.ReportRequest{
		UserID:    req.UserID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return ExportResponse{}, err
	}

	data, err := m.pdf.Render(rep, req.StartDate, req.EndDate, req.Language)
	if err != nil {
		return ExportResponse{}, err
	}

	return ExportResponse{
		FileName:    exportFileName(req.StartDate, req.EndDate, "pdf"),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

func (m *Module) handleExportDOCX(ctx context.Context, req ExportRequest, _ *mono.Msg) (ExportResponse, error) {
	rep, err := m.tasks.Report(ctx, taskstore.ReportRequest{
		UserID:    req.UserID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return ExportResponse{}, err
	}

	data, err := m.docx.Render(rep, req.StartDate, req.EndDate, req.Language)
	if err != nil {
		return ExportResponse{}, err
	}

	return ExportResponse{
		FileName:    exportFileName(req.StartDate, req.EndDate, "docx"),
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:        data,
	}, nil
}

func exportFileName(startDate, endDate, ext string) string {
	return fmt.Sprintf("report_%s_to_%s.%s", startDate, endDate, ext)
}
