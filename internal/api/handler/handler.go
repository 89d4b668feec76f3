package handler

import "github.com/simonbalanoff/SigEpRush-API/internal/service"

// Handler groups every HTTP handler.
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Term       *TermHandler
	Membership *MembershipHandler
	PNM        *PNMHandler
	Rating     *RatingHandler
	Upload     *UploadHandler
	Export     *ExportHandler
}

// NewHandler creates the handlers from the services.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Term:       NewTermHandler(svc.Term),
		Membership: NewMembershipHandler(svc.Membership),
		PNM:        NewPNMHandler(svc.PNM),
		Rating:     NewRatingHandler(svc.Rating, svc.Reaction),
		Upload:     NewUploadHandler(svc.Upload),
		Export:     NewExportHandler(svc.Export),
	}
}
