package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
)

const dateLayout = "2006-01-02"

// InvitationHandler handles the partner dashboard endpoints and the public
// parent-facing invitation endpoints.
type InvitationHandler struct {
	invitations   ports.InvitationService
	emails        ports.EmailService
	inviteBaseURL string
	log           zerolog.Logger
}

func NewInvitationHandler(invitations ports.InvitationService, emails ports.EmailService, inviteBaseURL string, log zerolog.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitations:   invitations,
		emails:        emails,
		inviteBaseURL: inviteBaseURL,
		log:           log,
	}
}

// SendInvite creates an invitation and emails the parent.
//
// @Summary      Invite a parent
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendInviteRequest  true  "Parent email"
// @Success      201   {object}  Envelope{data=sendInviteResponse}
// @Failure      404   {object}  Envelope
// @Router       /api/v1/parent/send-invite [post]
func (h *InvitationHandler) SendInvite(c echo.Context) error {
	partnerID, partnerName, err := partnerClaims(c)
	if err != nil {
		return err
	}

	var req sendInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	result, err := h.invitations.Create(ctx, ports.CreateInvitationInput{
		PartnerID:   partnerID,
		PartnerName: partnerName,
		ParentEmail: req.Email,
	})
	if err != nil {
		return err
	}

	// The invitation exists regardless of email delivery; a failed send is
	// audited in email_logs and replayed by the retrier.
	emailErr := h.emails.SendEmail(ctx, ports.SendEmailInput{
		To:            result.ParentEmail,
		RecipientName: result.ParentName,
		TemplateType:  domain.TemplateParentInvitation,
		Variables: map[string]string{
			"PARENT_NAME":  result.ParentName,
			"PARTNER_NAME": partnerName,
			"INVITE_LINK":  h.inviteBaseURL + "/" + result.InviteID,
			"EXPIRY_DATE":  result.ExpiryAt.Format("January 2, 2006 15:04 MST"),
		},
	})
	if emailErr != nil {
		h.log.Warn().Err(emailErr).
			Str("parent_email", result.ParentEmail).
			Msg("invitation created but email delivery failed")
	}

	return respond(c, http.StatusCreated, "Invite sent successfully", sendInviteResponse{
		ExpiryAt: result.ExpiryAt,
	})
}

// List returns one dashboard page of invitations with statistics.
//
// @Summary      List invitations
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Filter by status (PENDING, ACCEPTED, REJECTED)"
// @Param        parentName  query     string  false  "Case-insensitive substring match"
// @Param        startDate   query     string  false  "Sent on or after (YYYY-MM-DD)"
// @Param        endDate     query     string  false  "Sent on or before (YYYY-MM-DD)"
// @Param        sortBy      query     string  false  "createdAt, expiryAt, status, parentActionAt"
// @Param        sortOrder   query     string  false  "asc or desc (default desc)"
// @Param        page        query     int     false  "1-based page (default 1)"
// @Param        limit       query     int     false  "Page size (default 10, max 100)"
// @Success      200         {object}  Envelope{data=listInvitationsResponse}
// @Router       /api/v1/parent/invite [get]
func (h *InvitationHandler) List(c echo.Context) error {
	partnerID, _, err := partnerClaims(c)
	if err != nil {
		return err
	}

	var req listInvitationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := ports.ListInvitationsInput{
		PartnerID:  partnerID,
		Status:     req.Status,
		ParentName: req.ParentName,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
		Page:       req.Page,
		Limit:      req.Limit,
	}
	if req.StartDate != "" {
		input.StartDate, _ = time.Parse(dateLayout, req.StartDate)
	}
	if req.EndDate != "" {
		end, _ := time.Parse(dateLayout, req.EndDate)
		input.EndDate = end.Add(24*time.Hour - time.Nanosecond)
	}

	result, err := h.invitations.List(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Invitations fetched successfully", toListResponse(result))
}

// Validate resolves an invite link for the parent landing page. Public.
//
// @Summary      Validate an invitation
// @Tags         invitations
// @Produce      json
// @Param        inviteId  path      string  true  "Opaque invitation id"
// @Success      200       {object}  Envelope{data=validateInviteResponse}
// @Failure      400       {object}  Envelope
// @Failure      404       {object}  Envelope
// @Failure      410       {object}  Envelope
// @Router       /api/v1/parent/invite/{inviteId}/validate [get]
func (h *InvitationHandler) Validate(c echo.Context) error {
	result, err := h.invitations.Validate(c.Request().Context(), c.Param("inviteId"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Invitation is valid", validateInviteResponse{
		PartnerName: result.PartnerName,
		ParentID:    result.ParentID,
		Status:      result.Status,
		ExpiryAt:    result.ExpiryAt,
	})
}

// Accept records the parent's acceptance. Public (possession of the opaque
// link is the credential).
//
// @Summary      Accept an invitation
// @Tags         invitations
// @Produce      json
// @Param        inviteId  path      string  true  "Opaque invitation id"
// @Success      200       {object}  Envelope
// @Failure      400       {object}  Envelope
// @Failure      410       {object}  Envelope
// @Router       /api/v1/parent/invite/{inviteId}/accept [post]
func (h *InvitationHandler) Accept(c echo.Context) error {
	if err := h.invitations.Accept(c.Request().Context(), c.Param("inviteId")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Invitation accepted successfully", nil)
}

// Reject records the parent's rejection. Public.
//
// @Summary      Reject an invitation
// @Tags         invitations
// @Produce      json
// @Param        inviteId  path      string  true  "Opaque invitation id"
// @Success      200       {object}  Envelope
// @Failure      400       {object}  Envelope
// @Failure      410       {object}  Envelope
// @Router       /api/v1/parent/invite/{inviteId}/reject [post]
func (h *InvitationHandler) Reject(c echo.Context) error {
	if err := h.invitations.Reject(c.Request().Context(), c.Param("inviteId")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Invitation rejected successfully", nil)
}
