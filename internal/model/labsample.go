package model

const DefaultLabSampleStatus = "Received"

type LabSample struct {
	Base
	SampleID string `json:"sample_id" db:"sample_id"`
	Status   string `json:"status" db:"status"`
	Notes    string `json:"notes" db:"notes"`
}

type CreateLabSampleRequest struct {
	SampleID string `json:"sample_id" form:"sample_id" binding:"required,max=100"`
	Status   string `json:"status" form:"status" binding:"max=100"`
	Notes    string `json:"notes" form:"notes"`
}
