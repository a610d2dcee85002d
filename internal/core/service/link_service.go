package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/securedocs/fileshare/internal/api/metrics"
	"github.com/securedocs/fileshare/internal/core/domain"
	"github.com/securedocs/fileshare/internal/core/ports"
)

// LinkConsumer abstracts the atomic single-use guard (Redis). Consume
// returns true for exactly one caller per id, regardless of concurrency.
type LinkConsumer interface {
	Consume(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// LinkService mints and resolves signed download links. Links are stateless
// JWTs bound to a file id and the requesting identity; single use is
// enforced server-side through the LinkConsumer.
type LinkService struct {
	files     ports.FileRepository
	blobs     ports.BlobStore
	consumer  LinkConsumer
	secret    string
	ttl       time.Duration
	singleUse bool
	baseURL   string
	logger    zerolog.Logger
}

func NewLinkService(
	files ports.FileRepository,
	blobs ports.BlobStore,
	consumer LinkConsumer,
	secret string,
	ttl time.Duration,
	singleUse bool,
	baseURL string,
	logger zerolog.Logger,
) *LinkService {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &LinkService{
		files:     files,
		blobs:     blobs,
		consumer:  consumer,
		secret:    secret,
		ttl:       ttl,
		singleUse: singleUse,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}
}

// CreateDownloadLink mints a short-lived URL for fileID on behalf of
// requesterID. The URL embeds only the signed token, never the storage key.
func (s *LinkService) CreateDownloadLink(ctx context.Context, fileID, requesterID string) (string, error) {
	if _, err := s.files.FindByID(ctx, fileID); err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   fileID,
		Audience:  jwt.ClaimStrings{requesterID},
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("sign download link: %w", err)
	}

	metrics.DownloadLinksIssuedTotal.Inc()
	s.logger.Info().Str("file_id", fileID).Str("requester_id", requesterID).Msg("download link issued")

	return s.baseURL + "/download/" + token, nil
}

// ResolveDownloadLink validates the token and returns the file stream.
// Order matters: signature and expiry first, then the single-use consume
// (the loser of a concurrent race gets ErrLinkConsumed), then the file
// lookup, so an expired token never burns its single use.
func (s *LinkService) ResolveDownloadLink(ctx context.Context, token string) (*ports.Download, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			metrics.DownloadsTotal.WithLabelValues("expired").Inc()
			return nil, domain.ErrLinkExpired
		}
		metrics.DownloadsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidLink
	}
	if !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		metrics.DownloadsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidLink
	}

	if s.singleUse {
		ok, err := s.consumer.Consume(ctx, claims.ID, s.ttl)
		if err != nil {
			return nil, fmt.Errorf("consume download link: %w", err)
		}
		if !ok {
			metrics.DownloadsTotal.WithLabelValues("consumed").Inc()
			return nil, domain.ErrLinkConsumed
		}
	}

	record, err := s.files.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	body, err := s.blobs.Get(ctx, record.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("open file bytes: %w", err)
	}

	metrics.DownloadsTotal.WithLabelValues("ok").Inc()
	s.logger.Info().Str("file_id", record.ID).Msg("download link resolved")

	return &ports.Download{Record: record, Body: body}, nil
}
