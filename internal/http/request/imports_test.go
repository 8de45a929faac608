package request

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/platform/apierr"
)

func TestDecodeImport(t *testing.T) {
	cat, off := uuid.New(), uuid.New()
	body := `{"updateDate":"2022-02-01T12:00:00.000Z","items":[` +
		`{"id":"` + cat.String() + `","name":"root","type":"CATEGORY","parentId":null},` +
		`{"id":"` + off.String() + `","name":"x","type":"OFFER","parentId":"` + cat.String() + `","price":100}]}`

	batch, err := DecodeImport(strings.NewReader(body))
	if err != nil {
		t.Fatalf("DecodeImport: %v", err)
	}
	if !batch.UpdateDate.Equal(time.Date(2022, 2, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("updateDate: %v", batch.UpdateDate)
	}
	if len(batch.Items) != 2 {
		t.Fatalf("items: %d", len(batch.Items))
	}
	if batch.Items[0].ParentID != nil || batch.Items[0].Type != domain.ItemTypeCategory {
		t.Fatalf("category: %+v", batch.Items[0])
	}
	if batch.Items[1].ParentID == nil || *batch.Items[1].ParentID != cat || *batch.Items[1].Price != 100 {
		t.Fatalf("offer: %+v", batch.Items[1])
	}
}

func TestDecodeImportRejectsMalformedInput(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"bad json":    {`{"items":`, "Validation Failed"},
		"bad id":      {`{"updateDate":"2022-02-01T12:00:00Z","items":[{"id":"nope","name":"a","type":"OFFER","price":1}]}`, "Current uuid='nope' is not valid"},
		"bad parent":  {`{"updateDate":"2022-02-01T12:00:00Z","items":[{"id":"` + uuid.NewString() + `","name":"a","type":"OFFER","parentId":"zz","price":1}]}`, "Current uuid='zz' is not valid"},
		"bad date":    {`{"updateDate":"yesterday","items":[]}`, "Invalid date format yesterday"},
		"float price": {`{"updateDate":"2022-02-01T12:00:00Z","items":[{"id":"` + uuid.NewString() + `","name":"a","type":"OFFER","price":1.5}]}`, "Validation Failed"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeImport(strings.NewReader(tc.body))
			var ae *apierr.Error
			if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != CodeInvalidArgument {
				t.Fatalf("expected 400 api error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("message %q does not contain %q", err.Error(), tc.want)
			}
		})
	}
}

func TestDecodeImportLeavesMissingDateToValidation(t *testing.T) {
	batch, err := DecodeImport(strings.NewReader(`{"items":[]}`))
	if err != nil {
		t.Fatalf("DecodeImport: %v", err)
	}
	if !batch.UpdateDate.IsZero() {
		t.Fatalf("expected zero date, got %v", batch.UpdateDate)
	}
}
