package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/server/auth"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/dmitrijs2005/ageguard/internal/server/policy"
	"github.com/google/uuid"
)

const (
	DefaultConsentTokenValidity = 7 * 24 * time.Hour
	maxChildNameLen             = 100
)

// ParentNotifier delivers the consent link to the parent.
type ParentNotifier interface {
	NotifyConsentRequest(ctx context.Context, n models.ConsentNotice) error
}

// EvidenceArchiver stores the audit record of a processed consent.
type EvidenceArchiver interface {
	ArchiveConsent(ctx context.Context, e models.ConsentEvidence) error
}

type ConsentSettings struct {
	TokenValidity time.Duration
	LinkBaseURL   string
}

// ConsentWorkflow issues consent tokens and applies the parent's answer.
type ConsentWorkflow struct {
	d        Deps
	tokens   *auth.ConsentTokens
	notifier ParentNotifier
	archiver EvidenceArchiver
	settings ConsentSettings
}

// NewConsentWorkflow wires the workflow. archiver may be nil.
func NewConsentWorkflow(d Deps, tokens *auth.ConsentTokens, notifier ParentNotifier, archiver EvidenceArchiver, settings ConsentSettings) *ConsentWorkflow {
	if settings.TokenValidity <= 0 {
		settings.TokenValidity = DefaultConsentTokenValidity
	}
	return &ConsentWorkflow{
		d:        d.withDefaults(),
		tokens:   tokens,
		notifier: notifier,
		archiver: archiver,
		settings: settings,
	}
}

// Request issues a token for the child, supersedes the child's older
// pending tokens and mails the parent. A delivery failure after the token
// is stored is reported in the result, not as an error; the token stays valid.
func (w *ConsentWorkflow) Request(ctx context.Context, req models.ConsentRequest) (*models.ConsentRequestResult, error) {
	req.ParentEmail = strings.TrimSpace(req.ParentEmail)
	req.ChildName = strings.TrimSpace(req.ChildName)
	if err := validateConsentRequest(req); err != nil {
		return nil, err
	}

	token, hash, err := w.tokens.New()
	if err != nil {
		return nil, fmt.Errorf("%w: generate consent token: %v", common.ErrorInternal, err)
	}
	link, err := w.link(token)
	if err != nil {
		return nil, err
	}

	now := w.d.Clock.Now()
	ct := &models.ConsentToken{
		ID:          uuid.NewString(),
		TokenHash:   hash,
		ParentEmail: req.ParentEmail,
		ChildUserID: req.ChildUserID,
		ChildName:   req.ChildName,
		ChildAge:    req.ChildAge,
		ExpiresAt:   now.Add(w.settings.TokenValidity),
		CreatedAt:   now,
	}

	err = dbx.WithTx(ctx, w.d.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := w.d.Repos.ConsentTokens(tx)
		n, err := repo.SupersedePending(ctx, req.ChildUserID, now)
		if err != nil {
			return persistence("supersede consent tokens", err)
		}
		if n > 0 {
			w.d.Logger.Info(ctx, "older consent tokens superseded", "child_user_id", req.ChildUserID, "count", n)
		}
		if err := repo.Create(ctx, ct); err != nil {
			return persistence("store consent token", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &models.ConsentRequestResult{TokenID: ct.ID, ExpiresAt: ct.ExpiresAt, Token: token}

	notice := models.ConsentNotice{
		ParentEmail: req.ParentEmail,
		ChildName:   req.ChildName,
		ChildAge:    req.ChildAge,
		Link:        link,
		ExpiresAt:   ct.ExpiresAt,
	}
	if err := w.notifier.NotifyConsentRequest(ctx, notice); err != nil {
		w.d.Logger.Warn(ctx, "consent request stored but parent not notified",
			"token_id", ct.ID, "child_user_id", req.ChildUserID, "error", err)
		res.Warning = "consent request saved but the parent could not be notified"
		return res, nil
	}

	res.Notified = true
	w.d.Logger.Info(ctx, "consent requested", "token_id", ct.ID, "child_user_id", req.ChildUserID)
	return res, nil
}

// Process applies the parent's answer for token. Everything it writes (the
// bundle, the account switch and the used flag) commits in one
// transaction with the token row locked, so a token is applied at most once.
// An expired token changes nothing.
func (w *ConsentWorkflow) Process(ctx context.Context, token string, agrees bool, overrides *models.RestrictionOverrides) (*models.ConsentOutcome, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, common.ErrTokenInvalid
	}

	var (
		outcome  models.ConsentOutcome
		evidence models.ConsentEvidence
	)
	err := dbx.WithTx(ctx, w.d.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tokens := w.d.Repos.ConsentTokens(tx)

		ct, err := tokens.FindByHashForUpdate(ctx, w.tokens.Hash(token))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrTokenInvalid
			}
			return persistence("load consent token", err)
		}

		now := w.d.Clock.Now()
		switch ct.State(now) {
		case models.TokenSuperseded:
			return common.ErrTokenInvalid
		case models.TokenApproved, models.TokenDenied:
			return common.ErrTokenUsed
		case models.TokenExpired:
			return common.ErrTokenExpired
		}

		decision := models.DecisionDenied
		var bundle *models.RestrictionBundle
		if agrees {
			decision = models.DecisionApproved
			bundle = policy.Merge(policy.Resolve(ct.ChildAge), overrides)
			if bundle != nil {
				if err := ValidateBundle(bundle); err != nil {
					return err
				}
				bundle.UserID = ct.ChildUserID
				bundle.Source = models.SourceConsent
				bundle.UpdatedAt = now
				if err := w.d.Repos.Restrictions(tx).Upsert(ctx, bundle); err != nil {
					return persistence("upsert restrictions", err)
				}
			}
		}

		if err := w.d.Repos.Accounts(tx).SetPurchasing(ctx, ct.ChildUserID, agrees, now); err != nil {
			return persistence("update account status", err)
		}
		if err := tokens.MarkProcessed(ctx, ct.ID, decision, now); err != nil {
			if errors.Is(err, common.ErrTokenUsed) {
				return err
			}
			return persistence("mark consent token used", err)
		}

		outcome = models.ConsentOutcome{
			ChildUserID:       ct.ChildUserID,
			Decision:          decision,
			PurchasingEnabled: agrees,
			Restrictions:      bundle,
			ProcessedAt:       now,
		}
		evidence = models.ConsentEvidence{
			TokenID:           ct.ID,
			ChildUserID:       ct.ChildUserID,
			ChildName:         ct.ChildName,
			ChildAge:          ct.ChildAge,
			ParentEmail:       ct.ParentEmail,
			Decision:          decision,
			RequestedAt:       ct.CreatedAt,
			ProcessedAt:       now,
			Restrictions:      bundle,
			PurchasingEnabled: agrees,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.d.Logger.Info(ctx, "consent processed", "token_id", evidence.TokenID,
		"child_user_id", outcome.ChildUserID, "decision", string(outcome.Decision))

	if w.archiver != nil {
		if err := w.archiver.ArchiveConsent(ctx, evidence); err != nil {
			w.d.Logger.Warn(ctx, "consent applied but evidence not archived", "token_id", evidence.TokenID, "error", err)
			outcome.Warning = "consent applied but the audit record could not be archived"
		}
	}
	return &outcome, nil
}

func (w *ConsentWorkflow) link(token string) (string, error) {
	u, err := url.Parse(w.settings.LinkBaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: consent link base url: %v", common.ErrorInternal, err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func validateConsentRequest(req models.ConsentRequest) error {
	if req.ChildUserID == "" {
		return fmt.Errorf("%w: child user id is required", common.ErrValidation)
	}
	addr, err := mail.ParseAddress(req.ParentEmail)
	if err != nil || addr.Address != req.ParentEmail {
		return fmt.Errorf("%w: parentEmail is not a valid address", common.ErrValidation)
	}
	if req.ChildName == "" || utf8.RuneCountInString(req.ChildName) > maxChildNameLen {
		return fmt.Errorf("%w: childName must be 1 to %d characters", common.ErrValidation, maxChildNameLen)
	}
	if req.ChildAge < 0 || req.ChildAge >= policy.AdultAge {
		return fmt.Errorf("%w: childAge must be between 0 and %d", common.ErrValidation, policy.AdultAge-1)
	}
	return nil
}
