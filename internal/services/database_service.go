package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/DPU-COL/learner-assist-service/internal/events"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/rbac"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

type databaseService struct {
	repo      repositories.Repository
	validator *validator.Validator
	events    events.EventPublisher
	logger    utils.Logger
}

func NewDatabaseService(
	repo repositories.Repository,
	v *validator.Validator,
	publisher events.EventPublisher,
	logger utils.Logger,
) DatabaseService {
	return &databaseService{
		repo:      repo,
		validator: v,
		events:    publisher,
		logger:    logger,
	}
}

func (s *databaseService) List(ctx context.Context, caller *models.User, filters repositories.DatabaseEntryFilters) (*DatabaseEntryListResponse, error) {
	if err := rbac.Authorize(caller, rbac.PermManageDatabase); err != nil {
		return nil, NewAuthorizationError()
	}

	entries, total, err := s.repo.DatabaseEntry().List(ctx, filters)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return &DatabaseEntryListResponse{Entries: entries, Total: total}, nil
}

func (s *databaseService) Get(ctx context.Context, caller *models.User, id string) (*models.DatabaseEntry, error) {
	if err := rbac.Authorize(caller, rbac.PermManageDatabase); err != nil {
		return nil, NewAuthorizationError()
	}

	entry, err := s.repo.DatabaseEntry().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("database entry")
		}
		return nil, NewStorageError(err)
	}
	return entry, nil
}

func (s *databaseService) Create(ctx context.Context, caller *models.User, req *DatabaseEntryCreateRequest) (*models.DatabaseEntry, error) {
	if err := rbac.Authorize(caller, rbac.PermManageDatabase); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	entry := &models.DatabaseEntry{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Schema:     models.MustJSON(req.Schema),
		Category:   models.CategoryOther,
		UploadedBy: caller.ID,
		IsActive:   true,
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Data != nil {
		entry.Data = models.MustJSON(req.Data)
	}
	if req.Category != "" {
		entry.Category = models.DatabaseCategory(req.Category)
	}

	if err := s.repo.DatabaseEntry().Create(ctx, entry); err != nil {
		return nil, NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, entry.ID, "create")
	return entry, nil
}

func (s *databaseService) Update(ctx context.Context, caller *models.User, id string, req *DatabaseEntryUpdateRequest) (*models.DatabaseEntry, error) {
	if err := rbac.Authorize(caller, rbac.PermManageDatabase); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	entry, err := s.repo.DatabaseEntry().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("database entry")
		}
		return nil, NewStorageError(err)
	}

	if req.Name != nil {
		entry.Name = *req.Name
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Schema != nil {
		entry.Schema = models.MustJSON(req.Schema)
	}
	if req.Data != nil {
		entry.Data = models.MustJSON(req.Data)
	}
	if req.Category != nil {
		entry.Category = models.DatabaseCategory(*req.Category)
	}
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}

	if err := s.repo.DatabaseEntry().Update(ctx, entry); err != nil {
		return nil, NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, entry.ID, "update")
	return entry, nil
}

func (s *databaseService) Delete(ctx context.Context, caller *models.User, id string) error {
	if err := rbac.Authorize(caller, rbac.PermManageDatabase); err != nil {
		return NewAuthorizationError()
	}

	if err := s.repo.DatabaseEntry().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("database entry")
		}
		return NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, id, "delete")
	return nil
}

// ImportRecords parses an uploaded xlsx workbook and appends its rows to the
// entry's data array. The first row of the first sheet is the header; each
// following row becomes one record keyed by header name. Blank headers and
// fully empty rows are skipped.
func (s *databaseService) ImportRecords(ctx context.Context, caller *models.User, id string, xlsxData []byte) (*models.DatabaseEntry, error) {
	if err := rbac.Authorize(caller, rbac.PermManageDatabase); err != nil {
		return nil, NewAuthorizationError()
	}

	entry, err := s.repo.DatabaseEntry().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("database entry")
		}
		return nil, NewStorageError(err)
	}

	records, err := parseWorkbook(xlsxData)
	if err != nil {
		return nil, NewValidationError("invalid spreadsheet: %v", err)
	}
	if len(records) == 0 {
		return nil, NewValidationError("spreadsheet contains no data rows")
	}

	merged := append(entry.Records(), records...)
	entry.Data = models.MustJSON(merged)

	if err := s.repo.DatabaseEntry().Update(ctx, entry); err != nil {
		return nil, NewStorageError(err)
	}

	s.logger.Info("imported spreadsheet records",
		"entry_id", entry.ID, "rows", len(records), "total", len(merged))
	s.publishMutation(ctx, caller.ID, entry.ID, "import")
	return entry, nil
}

func parseWorkbook(data []byte) ([]map[string]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, excelize.ErrSheetNotExist{SheetName: "Sheet1"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	records := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := map[string]any{}
		empty := true
		for i, header := range headers {
			key := strings.TrimSpace(header)
			if key == "" || i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			if value == "" {
				continue
			}
			empty = false
			record[key] = cellValue(value)
		}
		if !empty {
			records = append(records, record)
		}
	}
	return records, nil
}

// cellValue keeps numeric and boolean cells typed instead of storing every
// cell as a string.
func cellValue(raw string) any {
	var n json.Number
	if err := json.Unmarshal([]byte(raw), &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func (s *databaseService) publishMutation(ctx context.Context, actorID, targetID, action string) {
	event := events.NewEvent(events.EventDatabaseChanged, events.AdminMutationData{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
	})
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish database event", "error", err, "action", action)
	}
}
