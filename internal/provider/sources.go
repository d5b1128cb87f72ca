package provider

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// ErrNotFound is returned by a source when the requested item simply
// isn't there — a recoverable, fall-through-to-next-source condition,
// never a fatal error on its own.
var ErrNotFound = errors.New("provider: not found at this source")

// TxSource fetches a transaction payload by digest. GRPCTxSource (the
// primary chain RPC seam) and FSTxStore implement this;
// GraphQLObjectSource does not.
type TxSource interface {
	GetTransaction(ctx context.Context, digest sui.Digest) (TransactionPayload, error)
}

// ObjectSource fetches one object at an exact version.
type ObjectSource interface {
	GetObject(ctx context.Context, id sui.Address, version uint64) (cache.VersionedObject, error)
}

// PackageSource fetches a package, optionally pinned to a version.
type PackageSource interface {
	GetPackage(ctx context.Context, id sui.Address, version *uint64) (cache.Package, error)
}

// CheckpointSource fetches a full checkpoint payload by sequence
// number.
type CheckpointSource interface {
	GetCheckpoint(ctx context.Context, sequence uint64) (CheckpointPayload, error)
}

// EpochSource resolves epoch metadata.
type EpochSource interface {
	GetEpoch(ctx context.Context, epoch uint64) (EpochMeta, error)
}

// DynamicFieldSource enumerates a parent's dynamic-field children, the
// discovery mechanism a breadth-first prefetch over nested dynamic
// fields drives.
type DynamicFieldSource interface {
	ListDynamicFields(ctx context.Context, parent sui.Address, limit int) ([]cache.VersionedObject, error)
}

// RateLimitedSource is a token-bucket limiter that a source seam
// (GRPCTxSource, GraphQLObjectSource) calls Wait on before each
// request. It holds only the limiter; it does not wrap or embed a
// source itself.
type RateLimitedSource struct {
	limiter *rate.Limiter
}

// NewRateLimitedSource builds a limiter allowing burst requests up to
// burst and refilling at ratePerSecond.
func NewRateLimitedSource(ratePerSecond float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until the limiter admits one more request, or ctx is
// done.
func (s *RateLimitedSource) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// GRPCTxSource is the primary chain RPC transport seam. Wiring an actual
// network client is out of this repo's scope; Conn is whatever transport
// the caller constructed, kept narrow so tests can substitute a fake
// without dialing a real connection.
type GRPCTxSource struct {
	Conn        GRPCConn
	RateLimiter *RateLimitedSource
}

// GRPCConn is the narrow RPC surface GRPCTxSource depends on.
type GRPCConn interface {
	GetTransaction(ctx context.Context, digest string) (TransactionPayload, error)
	GetCheckpoint(ctx context.Context, sequence uint64) (CheckpointPayload, error)
	GetEpoch(ctx context.Context, epoch uint64) (EpochMeta, error)
}

// GetTransaction implements TxSource by delegating to the wrapped
// connection, honoring the rate limiter first.
func (g *GRPCTxSource) GetTransaction(ctx context.Context, digest sui.Digest) (TransactionPayload, error) {
	if g.RateLimiter != nil {
		if err := g.RateLimiter.Wait(ctx); err != nil {
			return TransactionPayload{}, err
		}
	}
	return g.Conn.GetTransaction(ctx, digest.String())
}

// GraphQLObjectSource is the secondary RPC transport seam, used for
// historical or supplemental reads when the primary RPC source is
// disabled or falls through.
type GraphQLObjectSource struct {
	Client      GraphQLClient
	RateLimiter *RateLimitedSource
}

// GraphQLClient is the narrow HTTP/GraphQL client contract this
// package depends on.
type GraphQLClient interface {
	QueryObject(ctx context.Context, id string, version uint64) (cache.VersionedObject, error)
	QueryDynamicFields(ctx context.Context, parent string, limit int) ([]cache.VersionedObject, error)
}

func (g *GraphQLObjectSource) GetObject(ctx context.Context, id sui.Address, version uint64) (cache.VersionedObject, error) {
	if g.RateLimiter != nil {
		if err := g.RateLimiter.Wait(ctx); err != nil {
			return cache.VersionedObject{}, err
		}
	}
	return g.Client.QueryObject(ctx, id.String(), version)
}

func (g *GraphQLObjectSource) ListDynamicFields(ctx context.Context, parent sui.Address, limit int) ([]cache.VersionedObject, error) {
	if g.RateLimiter != nil {
		if err := g.RateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return g.Client.QueryDynamicFields(ctx, parent.String(), limit)
}
