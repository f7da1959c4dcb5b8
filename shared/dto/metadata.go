package dto

import (
	"todoapi/shared/constant"
	"todoapi/shared/model"
	"todoapi/shared/timezone"
)

type Metadata struct {
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	DeletedAt *string `json:"deletedAt"`
}

func (m *Metadata) FromModel(model model.Metadata) {
	m.CreatedAt = timezone.Format(model.CreatedAt, constant.DateFormat)
	m.UpdatedAt = timezone.Format(model.UpdatedAt, constant.DateFormat)
	m.DeletedAt = timezone.FormatPtr(model.DeletedAt, constant.DateFormat)
}
