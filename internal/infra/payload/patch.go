// Package payload decodes JSON item patches validated against an embedded
// JSON Schema. It is the entry point for machine-produced items such as
// captured email.
package payload

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/runoshun/gtdsheet/internal/domain"
)

//go:embed patch.schema.json
var schemaJSON string

const schemaURL = "https://gtdsheet.local/schema/item-patch.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add patch schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Schema returns the raw JSON Schema document.
func Schema() string {
	return schemaJSON
}

// document mirrors the JSON shape of a patch.
type document struct {
	Title         *string `json:"title"`
	Notes         *string `json:"notes"`
	Status        *string `json:"status"`
	Type          *string `json:"type"`
	ParentID      *string `json:"parentId"`
	ContextID     *string `json:"contextId"`
	AreaID        *string `json:"areaId"`
	Energy        *string `json:"energyRequired"`
	EmailID       *string `json:"emailId"`
	EmailThreadID *string `json:"emailThreadId"`
	WaitingFor    *string `json:"waitingFor"`
	DueDate       *string `json:"dueDate"`
	ScheduledDate *string `json:"scheduledDate"`
	TimeEstimate  *int    `json:"timeEstimate"`
	Importance    *int    `json:"importance"`
	Urgency       *int    `json:"urgency"`
	IsStarred     *bool   `json:"isStarred"`
}

// Decode reads one JSON object and converts it into a patch.
// Schema violations wrap domain.ErrValidation and list every failing path.
func Decode(r io.Reader) (domain.ItemPatch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.ItemPatch{}, fmt.Errorf("read payload: %w", err)
	}
	if err := Validate(data); err != nil {
		return domain.ItemPatch{}, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.ItemPatch{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return doc.patch()
}

// Validate checks data against the patch schema.
func Validate(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %w", domain.ErrValidation, err)
	}

	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		var msgs []string
		collectSchemaErrors(&msgs, ve)
		sort.Strings(msgs)
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
	}
	return nil
}

func collectSchemaErrors(msgs *[]string, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		path := strings.TrimPrefix(err.InstanceLocation, "/")
		if path == "" {
			*msgs = append(*msgs, err.Message)
			return
		}
		*msgs = append(*msgs, path+": "+err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(msgs, cause)
	}
}

func (d document) patch() (domain.ItemPatch, error) {
	p := domain.ItemPatch{
		Title:         d.Title,
		Notes:         d.Notes,
		ParentID:      d.ParentID,
		ContextID:     d.ContextID,
		AreaID:        d.AreaID,
		EmailID:       d.EmailID,
		EmailThreadID: d.EmailThreadID,
		WaitingFor:    d.WaitingFor,
		TimeEstimate:  d.TimeEstimate,
		Importance:    d.Importance,
		Urgency:       d.Urgency,
		IsStarred:     d.IsStarred,
	}
	if d.Status != nil {
		p.Status = domain.Ptr(domain.Status(*d.Status))
	}
	if d.Type != nil {
		p.Type = domain.Ptr(domain.ItemType(*d.Type))
	}
	if d.Energy != nil {
		p.Energy = domain.Ptr(domain.Energy(*d.Energy))
	}
	var err error
	if p.DueDate, err = parseDate(d.DueDate); err != nil {
		return domain.ItemPatch{}, err
	}
	if p.ScheduledDate, err = parseDate(d.ScheduledDate); err != nil {
		return domain.ItemPatch{}, err
	}
	return p, p.Validate()
}

func parseDate(s *string) (*domain.Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := domain.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
