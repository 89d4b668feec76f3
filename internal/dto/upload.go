package dto

// PresignRequest asks for a direct-to-bucket upload policy.
type PresignRequest struct {
	ContentType string `json:"content_type" binding:"required,max=100"`
	MaxBytes    int64  `json:"max_bytes"    binding:"omitempty,min=1"`
}

// PresignResponse is what the client posts the file with.
type PresignResponse struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Fields    map[string]string `json:"fields"`
	PublicURL string            `json:"public_url"`
	ExpiresIn int               `json:"expires_in"`
}
