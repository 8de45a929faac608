package request

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/platform/apierr"
)

const CodeInvalidArgument = "invalid_argument"

type ImportItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parentId"`
	Price    *int64  `json:"price"`
}

type Import struct {
	Items      []ImportItem `json:"items"`
	UpdateDate string       `json:"updateDate"`
}

// DecodeImport reads an import body from a stream (CLI input). Shape errors come back as 400 api
// errors; content rules are left to the import service.
func DecodeImport(r io.Reader) (domain.ImportBatch, error) {
	var req Import
	dec := json.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return domain.ImportBatch{}, InvalidBody(err)
	}
	return req.ToBatch()
}

// InvalidBody wraps a body decoding or binding failure as a 400.
func InvalidBody(err error) error {
	return apierr.BadRequest(CodeInvalidArgument, "Validation Failed: %v", err)
}

func (req Import) ToBatch() (domain.ImportBatch, error) {
	batch := domain.ImportBatch{Items: make([]domain.ImportItem, 0, len(req.Items))}
	if strings.TrimSpace(req.UpdateDate) != "" {
		at, err := ParseDate(req.UpdateDate)
		if err != nil {
			return domain.ImportBatch{}, err
		}
		batch.UpdateDate = at
	}
	for _, it := range req.Items {
		id, err := ParseID(it.ID)
		if err != nil {
			return domain.ImportBatch{}, err
		}
		item := domain.ImportItem{
			ID:    id,
			Name:  it.Name,
			Type:  domain.ItemType(it.Type),
			Price: it.Price,
		}
		if it.ParentID != nil {
			parent, err := ParseID(*it.ParentID)
			if err != nil {
				return domain.ImportBatch{}, err
			}
			item.ParentID = &parent
		}
		batch.Items = append(batch.Items, item)
	}
	return batch, nil
}

func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apierr.BadRequest(CodeInvalidArgument, "Current uuid='%s' is not valid", raw)
	}
	return id, nil
}

func ParseDate(raw string) (time.Time, error) {
	at, err := domain.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, apierr.BadRequest(CodeInvalidArgument, "Invalid date format %s", raw)
	}
	return at, nil
}
