// Package publish defines the downstream publishing boundary: the
// publisher collaborator contract and a reference commitment-hook
// implementation. The concrete blockchain transport and the optional
// zero-knowledge proving harness are external collaborators, specified
// here only via their contracts.
package publish

import (
	"context"

	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

// Request is what the scheduler hands the publisher for one consensus
// price once its commitment digest has been computed.
type Request struct {
	AssetID           string
	Price             float64
	Timestamp         int64
	CommitmentDigest  string
	ProofDigest       string
	ProofPublicInputs []string
}

// Result is the publisher's opaque outcome; the core never interprets
// TxHash beyond logging it.
type Result struct {
	TxHash string
	OK     bool
}

// Publisher is the downstream publishing collaborator. Failures are
// surfaced to scheduler logging and a metrics counter; the cycle
// continues regardless.
type Publisher interface {
	Publish(ctx context.Context, req Request) (Result, error)
}

// CommitmentHook computes a deterministic digest binding a consensus
// record (and an optional proof digest) to an external verifier.
type CommitmentHook func(consensus oraclecore.ConsensusPrice, assetID string, proofDigest string) string
