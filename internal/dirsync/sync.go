// Package dirsync imports the organization's department tree from a Lark
// HR export file into the directory store. The export is the source of
// truth for departments; rows are upserted by external id so repeated
// syncs are idempotent.
package dirsync

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/starford/linkhub/internal/models"
	"github.com/starford/linkhub/internal/store"
)

// exportDepartment is one record in the HR export file.
type exportDepartment struct {
	LarkDepartmentID string `json:"lark_department_id"`
	Name             string `json:"name"`
	NameEn           string `json:"name_en"`
	Description      string `json:"description"`
	ParentLarkID     string `json:"parent_lark_department_id"`
	MemberCount      int    `json:"member_count"`
}

// exportFile is the top-level shape of the export.
type exportFile struct {
	Departments []exportDepartment `json:"departments"`
}

// SyncFile reads the export at path and reconciles the department table.
// Upserts run in two passes: all rows first, then parent links, so the
// export does not need to be topologically ordered. Returns the number of
// departments processed.
func SyncFile(db store.Directory, path string, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("dirsync: read export: %w", err)
	}

	var export exportFile
	if err := json.Unmarshal(data, &export); err != nil {
		return 0, fmt.Errorf("dirsync: parse export: %w", err)
	}

	now := time.Now().UTC()
	synced := 0
	for _, d := range export.Departments {
		if d.LarkDepartmentID == "" || d.Name == "" {
			logger.Warn("dirsync: skipping record without id or name",
				slog.String("lark_department_id", d.LarkDepartmentID))
			continue
		}
		dept := &models.Department{
			ID:               uuid.NewString(),
			LarkDepartmentID: d.LarkDepartmentID,
			Name:             d.Name,
			NameEn:           d.NameEn,
			Description:      d.Description,
			MemberCount:      d.MemberCount,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := db.UpsertDepartment(dept); err != nil {
			return synced, fmt.Errorf("dirsync: upsert %q: %w", d.LarkDepartmentID, err)
		}
		synced++
	}

	for _, d := range export.Departments {
		if d.ParentLarkID == "" {
			continue
		}
		if err := db.SetDepartmentParent(d.LarkDepartmentID, d.ParentLarkID); err != nil {
			logger.Warn("dirsync: parent link failed",
				slog.String("lark_department_id", d.LarkDepartmentID),
				slog.String("parent", d.ParentLarkID),
				slog.String("error", err.Error()))
		}
	}

	logger.Info("dirsync: completed", slog.Int("departments", synced), slog.String("path", path))
	return synced, nil
}
