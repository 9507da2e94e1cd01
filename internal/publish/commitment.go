package publish

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

// Sha256CommitmentHook is the reference CommitmentHook: a deterministic
// sha256 digest over (assetID, price, timestamp, proofDigest), rendered
// as a hex string. The digest is the plain sha256 output; it is not
// reduced into a prime field. proofDigest is treated as an already-canonicalized,
// caller-supplied hex string; canonicalizing it is the publisher's
// responsibility, not this hook's.
func Sha256CommitmentHook(consensus oraclecore.ConsensusPrice, assetID string, proofDigest string) string {
	h := sha256.New()
	h.Write(identityBytes(assetID))
	h.Write(priceBytes(consensus.Price))
	h.Write(timestampBytes(consensus.ComputedAt))
	if proofDigest != "" {
		h.Write([]byte(proofDigest))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func identityBytes(assetID string) []byte {
	return []byte(assetID)
}

func priceBytes(price float64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(int64(price*1e8)))
	return buf
}

func timestampBytes(timestampMillis int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(timestampMillis))
	return buf
}
