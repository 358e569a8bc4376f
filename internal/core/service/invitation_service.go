package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/api/metrics"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/pkg/opaque"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// sortFields maps API sort keys to stored field names. Anything else falls
// back to createdAt.
var sortFields = map[string]string{
	"createdAt":      "created_at",
	"expiryAt":       "expiry_at",
	"status":         "status",
	"parentActionAt": "parent_action_at",
}

// InvitationService implements the partner→parent invitation lifecycle.
type InvitationService struct {
	repo  ports.InvitationRepository
	users ports.UserRepository
	codec *opaque.Codec
	log   zerolog.Logger
	now   func() time.Time
}

func NewInvitationService(repo ports.InvitationRepository, users ports.UserRepository, codec *opaque.Codec, log zerolog.Logger) *InvitationService {
	return &InvitationService{
		repo:  repo,
		users: users,
		codec: codec,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create invites the parent behind parentEmail. The email must belong to an
// existing PARENT-role account; partners cannot invite arbitrary addresses.
func (s *InvitationService) Create(ctx context.Context, input ports.CreateInvitationInput) (*ports.CreateInvitationResult, error) {
	parent, err := s.users.FindByEmail(ctx, input.ParentEmail)
	if err != nil || parent.Role != domain.RoleParent || parent.ParentID == "" {
		return nil, domain.ErrParentNotFound
	}

	now := s.now()
	inv := &domain.Invitation{
		PartnerID:   input.PartnerID,
		PartnerName: input.PartnerName,
		ParentID:    parent.ParentID,
		ParentName:  parent.Name,
		ParentEmail: parent.Email,
		Status:      domain.InvitationPending,
		CreatedAt:   now,
		ExpiryAt:    now.Add(domain.InvitationTTL),
	}

	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		s.log.Error().Err(err).Str("partner_id", input.PartnerID).Msg("failed to create invitation")
		return nil, err
	}

	inviteID, err := s.codec.Encrypt(created.ID)
	if err != nil {
		return nil, err
	}

	metrics.InvitationsCreatedTotal.Inc()
	s.log.Info().
		Str("invitation_id", created.ID).
		Str("partner_id", input.PartnerID).
		Str("parent_id", created.ParentID).
		Msg("invitation created")

	return &ports.CreateInvitationResult{
		InviteID:    inviteID,
		ParentID:    created.ParentID,
		ParentName:  created.ParentName,
		ParentEmail: created.ParentEmail,
		ExpiryAt:    created.ExpiryAt,
	}, nil
}

// Validate resolves an opaque invite id for the parent-facing landing page.
func (s *InvitationService) Validate(ctx context.Context, inviteID string) (*ports.ValidateInvitationResult, error) {
	inv, err := s.load(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	return &ports.ValidateInvitationResult{
		PartnerName: inv.PartnerName,
		ParentID:    inv.ParentID,
		Status:      string(inv.Status),
		ExpiryAt:    inv.ExpiryAt,
	}, nil
}

// Accept marks a pending invitation accepted.
func (s *InvitationService) Accept(ctx context.Context, inviteID string) error {
	return s.transition(ctx, inviteID, domain.InvitationAccepted)
}

// Reject marks a pending invitation rejected.
func (s *InvitationService) Reject(ctx context.Context, inviteID string) error {
	return s.transition(ctx, inviteID, domain.InvitationRejected)
}

// load decrypts the opaque id and applies the guard ladder shared by
// validate/accept/reject: not found → soft-deleted → already processed →
// expired.
func (s *InvitationService) load(ctx context.Context, inviteID string) (*domain.Invitation, error) {
	id, err := s.codec.Decrypt(inviteID)
	if err != nil {
		return nil, domain.ErrInvalidInviteID
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, domain.ErrInvalidInviteID
	}

	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.DeletedAt != nil {
		return nil, domain.ErrInvitationGone
	}
	if inv.Status != domain.InvitationPending {
		return nil, &domain.AlreadyProcessedError{Status: inv.Status}
	}
	if inv.IsExpired(s.now()) {
		return nil, domain.ErrInvitationExpired
	}
	return inv, nil
}

func (s *InvitationService) transition(ctx context.Context, inviteID string, to domain.InvitationStatus) error {
	inv, err := s.load(ctx, inviteID)
	if err != nil {
		return err
	}

	updated, err := s.repo.UpdateStatusIfPending(ctx, inv.ID, to, s.now())
	if err != nil {
		return err
	}
	if !updated {
		// A concurrent request won the conditional update; re-read so the
		// caller gets the precise "already X" answer.
		current, err := s.repo.FindByID(ctx, inv.ID)
		if err != nil {
			return err
		}
		if current.DeletedAt != nil {
			return domain.ErrInvitationGone
		}
		return &domain.AlreadyProcessedError{Status: current.Status}
	}

	metrics.InvitationTransitionsTotal.WithLabelValues(string(to)).Inc()
	s.log.Info().
		Str("invitation_id", inv.ID).
		Str("status", string(to)).
		Msg("invitation processed")
	return nil
}

// List returns one dashboard page: decorated rows, whole-set statistics, and
// pagination meta. The page query and the six counts run concurrently.
func (s *InvitationService) List(ctx context.Context, input ports.ListInvitationsInput) (*ports.ListInvitationsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	sortField, ok := sortFields[input.SortBy]
	if !ok {
		sortField = "created_at"
	}

	filter := ports.ListInvitationsFilter{
		PartnerID:  input.PartnerID,
		ParentName: input.ParentName,
		DateFrom:   input.StartDate,
		DateTo:     input.EndDate,
		SortField:  sortField,
		SortAsc:    input.SortOrder == "asc",
		Page:       page,
		Limit:      limit,
	}
	if input.Status != "" {
		filter.Status = domain.InvitationStatus(input.Status)
	}

	now := s.now()

	var (
		rows  []*domain.Invitation
		total int64
		stats ports.InvitationStatistics
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, total, err = s.repo.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Total, err = s.repo.Count(gctx, ports.CountInvitationsFilter{PartnerID: input.PartnerID})
		return err
	})
	g.Go(func() error {
		var err error
		stats.Pending, err = s.repo.Count(gctx, ports.CountInvitationsFilter{
			PartnerID: input.PartnerID, Status: domain.InvitationPending, ActiveAfter: now,
		})
		return err
	})
	g.Go(func() error {
		var err error
		stats.Accepted, err = s.repo.Count(gctx, ports.CountInvitationsFilter{
			PartnerID: input.PartnerID, Status: domain.InvitationAccepted,
		})
		return err
	})
	g.Go(func() error {
		var err error
		stats.Rejected, err = s.repo.Count(gctx, ports.CountInvitationsFilter{
			PartnerID: input.PartnerID, Status: domain.InvitationRejected,
		})
		return err
	})
	g.Go(func() error {
		var err error
		stats.Expired, err = s.repo.Count(gctx, ports.CountInvitationsFilter{
			PartnerID: input.PartnerID, Status: domain.InvitationPending, ExpiredBefore: now,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if decided := stats.Accepted + stats.Rejected; decided > 0 {
		stats.AcceptanceRate = int(math.Round(float64(stats.Accepted) / float64(decided) * 100))
	}

	items := make([]ports.InvitationListItem, 0, len(rows))
	for _, inv := range rows {
		inviteID, err := s.codec.Encrypt(inv.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, ports.InvitationListItem{
			InviteID:        inviteID,
			Status:          string(inv.EffectiveStatus(now)),
			ParentName:      inv.ParentName,
			ParentEmail:     inv.ParentEmail,
			SentAt:          inv.CreatedAt,
			ExpiryAt:        inv.ExpiryAt,
			ParentActionAt:  inv.ParentActionAt,
			IsExpired:       inv.IsExpired(now),
			DaysUntilExpiry: daysUntilExpiry(inv, now),
		})
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &ports.ListInvitationsResult{
		Items:      items,
		Statistics: stats,
		Pagination: ports.PaginationMeta{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalCount:  total,
			Limit:       limit,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

// daysUntilExpiry is the ceiling of the remaining time in days, floored at 0.
// Nil once the invitation has been decided.
func daysUntilExpiry(inv *domain.Invitation, now time.Time) *int {
	if inv.Status != domain.InvitationPending {
		return nil
	}
	days := int(math.Ceil(inv.ExpiryAt.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}
