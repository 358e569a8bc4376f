package handler

import "github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"

func toListResponse(result *ports.ListInvitationsResult) listInvitationsResponse {
	items := make([]invitationItemResponse, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, invitationItemResponse{
			ID:              it.InviteID,
			Status:          it.Status,
			ParentName:      it.ParentName,
			ParentEmail:     it.ParentEmail,
			SentAt:          it.SentAt,
			ExpiryAt:        it.ExpiryAt,
			ParentActionAt:  it.ParentActionAt,
			IsExpired:       it.IsExpired,
			DaysUntilExpiry: it.DaysUntilExpiry,
		})
	}

	return listInvitationsResponse{
		Invitations: items,
		Statistics: invitationStatisticsResponse{
			Total:          result.Statistics.Total,
			Pending:        result.Statistics.Pending,
			Accepted:       result.Statistics.Accepted,
			Rejected:       result.Statistics.Rejected,
			Expired:        result.Statistics.Expired,
			AcceptanceRate: result.Statistics.AcceptanceRate,
		},
		Pagination: paginationResponse{
			CurrentPage: result.Pagination.CurrentPage,
			TotalPages:  result.Pagination.TotalPages,
			TotalCount:  result.Pagination.TotalCount,
			Limit:       result.Pagination.Limit,
			HasNextPage: result.Pagination.HasNextPage,
			HasPrevPage: result.Pagination.HasPrevPage,
		},
	}
}
