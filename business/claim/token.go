package claim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"github.com/pobyzaarif/goshortcute"
)

const claimTokenTTL = 60 * time.Minute

// IssueClaimToken validates a code scanned by a not-yet-registered visitor
// and returns an opaque token that finalizes the claim once they have an
// account. The code stays unused until then; the token only proves which
// code was scanned and when.
func (s *Service) IssueClaimToken(ctx context.Context, code string) (string, error) {
	rc, err := s.codeRepo.FindValidCode(ctx, code)
	if err != nil {
		return "", err
	}

	expAt := time.Now().Add(claimTokenTTL).Unix()
	plain := fmt.Sprintf("%v|%v", rc.Code, expAt)

	encrypted, err := goshortcute.AESCBCEncrypt([]byte(plain), []byte(s.claimTokenKey))
	if err != nil {
		return "", fmt.Errorf("encrypt claim token: %w", err)
	}

	return goshortcute.StringtoBase64Encode(encrypted), nil
}

// FinalizeClaim redeems a claim token for a now-registered user. The token
// round-trips back to a code; everything after that is a normal scan.
func (s *Service) FinalizeClaim(ctx context.Context, userID uint, token string, meta domain.EventMeta) (ScanResult, error) {
	code, err := s.decodeClaimToken(token)
	if err != nil {
		return ScanResult{}, err
	}

	return s.ProcessScan(ctx, userID, code, meta)
}

func (s *Service) decodeClaimToken(token string) (string, error) {
	decoded := goshortcute.StringtoBase64Decode(token)
	plain, err := goshortcute.AESCBCDecrypt([]byte(decoded), []byte(s.claimTokenKey))
	if err != nil {
		return "", fmt.Errorf("bad claim token: %w", domain.ErrInvalidInput)
	}

	parts := strings.Split(plain, "|")
	if len(parts) != 2 {
		return "", fmt.Errorf("bad claim token shape: %w", domain.ErrInvalidInput)
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("bad claim token timestamp: %w", domain.ErrInvalidInput)
	}
	if time.Now().After(time.Unix(ts, 0)) {
		return "", fmt.Errorf("claim token expired: %w", domain.ErrInvalidInput)
	}

	return parts[0], nil
}
