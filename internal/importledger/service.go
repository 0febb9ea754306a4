package importledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ledgerly/ledgerly-backend/internal/auditlog"
)

var (
	ErrInvalidInput      = errors.New("invalid import payload")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// RecordInput carries an upload already parsed on the client side. The row
// data arrives as free-form JSON objects; the server keeps them verbatim.
type RecordInput struct {
	FileName string                   `json:"fileName"`
	FileType string                   `json:"fileType"`
	Data     []map[string]interface{} `json:"data"`
	UserID   uint                     `json:"userId"`
	UserName string                   `json:"userName"`
	OrgID    uint                     `json:"orgId"`
	OrgName  string                   `json:"orgName"`
	Notes    string                   `json:"notes"`
}

type Service interface {
	RecordImport(ctx context.Context, in RecordInput, ip string) (*Import, error)
	ListImports(ctx context.Context, orgID uint) ([]Import, error)
	ExportImports(ctx context.Context, orgID uint, format string) ([]byte, string, string, error)
}

type service struct {
	repo     Repository
	exporter Exporter
	audit    auditlog.Service
}

func NewService(repo Repository, exporter Exporter, audit auditlog.Service) Service {
	return &service{repo: repo, exporter: exporter, audit: audit}
}

func (s *service) RecordImport(ctx context.Context, in RecordInput, ip string) (*Import, error) {
	if in.FileName == "" || len(in.Data) == 0 || in.UserID == 0 || in.UserName == "" || in.OrgID == 0 || in.OrgName == "" {
		return nil, ErrInvalidInput
	}

	raw, err := json.Marshal(in.Data)
	if err != nil {
		return nil, ErrInvalidInput
	}

	imp := &Import{
		FileName:     in.FileName,
		FileType:     in.FileType,
		ImportedOn:   time.Now(),
		Records:      len(in.Data),
		Status:       StatusSuccess,
		UserID:       in.UserID,
		UserName:     in.UserName,
		OrgID:        in.OrgID,
		OrgName:      in.OrgName,
		Notes:        in.Notes,
		ImportedData: raw,
	}
	if err := s.repo.Create(ctx, imp); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, auditlog.Entry{
		UserID: &imp.UserID,
		OrgID:  &imp.OrgID,
		Action: "import.create",
		Details: map[string]interface{}{
			"file_name": imp.FileName,
			"records":   imp.Records,
		},
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})

	return imp, nil
}

func (s *service) ListImports(ctx context.Context, orgID uint) ([]Import, error) {
	return s.repo.FindByOrg(ctx, orgID)
}

// ExportImports renders the org's import history in the requested format
// and returns the file bytes, a download filename and the content type.
func (s *service) ExportImports(ctx context.Context, orgID uint, format string) ([]byte, string, string, error) {
	imports, err := s.repo.FindByOrg(ctx, orgID)
	if err != nil {
		return nil, "", "", err
	}
	return s.exporter.Export(format, imports)
}
