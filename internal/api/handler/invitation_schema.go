package handler

import "time"

type sendInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type sendInviteResponse struct {
	ExpiryAt time.Time `json:"expiryAt"`
}

type validateInviteResponse struct {
	PartnerName string    `json:"partnerName"`
	ParentID    string    `json:"parentId"`
	Status      string    `json:"status"`
	ExpiryAt    time.Time `json:"expiryAt"`
}

// listInvitationsRequest carries the dashboard query parameters. Dates are
// calendar days; the handler widens endDate to the end of the day.
type listInvitationsRequest struct {
	Status     string `query:"status"     validate:"omitempty,oneof=PENDING ACCEPTED REJECTED"`
	ParentName string `query:"parentName"`
	StartDate  string `query:"startDate"  validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `query:"endDate"    validate:"omitempty,datetime=2006-01-02"`
	SortBy     string `query:"sortBy"`
	SortOrder  string `query:"sortOrder"  validate:"omitempty,oneof=asc desc"`
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
}

type invitationItemResponse struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	ParentName      string     `json:"parentName"`
	ParentEmail     string     `json:"parentEmail"`
	SentAt          time.Time  `json:"sentAt"`
	ExpiryAt        time.Time  `json:"expiryAt"`
	ParentActionAt  *time.Time `json:"parentActionAt"`
	IsExpired       bool       `json:"isExpired"`
	DaysUntilExpiry *int       `json:"daysUntilExpiry"`
}

type invitationStatisticsResponse struct {
	Total          int64 `json:"total"`
	Pending        int64 `json:"pending"`
	Accepted       int64 `json:"accepted"`
	Rejected       int64 `json:"rejected"`
	Expired        int64 `json:"expired"`
	AcceptanceRate int   `json:"acceptanceRate"`
}

type paginationResponse struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type listInvitationsResponse struct {
	Invitations []invitationItemResponse     `json:"invitations"`
	Statistics  invitationStatisticsResponse `json:"statistics"`
	Pagination  paginationResponse           `json:"pagination"`
}
