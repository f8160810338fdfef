package models

import (
	"github.com/cozy-creator/model-server/internal/types"
	"github.com/uptrace/bun"
)

// ModelSpec is one row of the models table. Rows are insert-only.
type ModelSpec struct {
	bun.BaseModel `bun:"table:models,alias:m"`

	ModelID   string `bun:"model_id,pk"`
	ModelType string `bun:"model_type,notnull"`
}

func FromDescriptor(d types.ModelDescriptor) ModelSpec {
	return ModelSpec{ModelID: d.ID, ModelType: d.Type}
}

func (m ModelSpec) Descriptor() types.ModelDescriptor {
	return types.ModelDescriptor{ID: m.ModelID, Type: m.ModelType}
}
