package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/salesboost/salesboost/config"
)

// Evidence downloads are granted through short-lived signed URLs instead of
// session auth, so the browser can fetch files directly once the access
// decision approved the caller. The signature covers the evidence id and the
// expiry instant.

// SignEvidenceURL returns the relative download URL for an evidence file,
// valid for ttl.
func SignEvidenceURL(evidenceID uint, ttl time.Duration) string {
	exp := time.Now().Add(ttl).Unix()
	sig := evidenceSignature(evidenceID, exp)
	return fmt.Sprintf("/api/v1/evidence/%d/download?exp=%d&sig=%s", evidenceID, exp, sig)
}

// VerifyEvidenceURL checks the expiry and signature query parameters of a
// download request.
func VerifyEvidenceURL(evidenceID uint, expStr, sig string) bool {
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return false
	}
	if time.Now().Unix() > exp {
		return false
	}
	expected := evidenceSignature(evidenceID, exp)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func evidenceSignature(evidenceID uint, exp int64) string {
	cfg := config.Get()
	mac := hmac.New(sha256.New, []byte(cfg.JWTSecret))
	fmt.Fprintf(mac, "evidence:%d:%d", evidenceID, exp)
	return hex.EncodeToString(mac.Sum(nil))
}
