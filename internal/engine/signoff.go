package engine

import (
	"context"

	"go.uber.org/zap"

	"fitgap/internal/domain"
	"fitgap/internal/events"
	"fitgap/internal/repo"
)

// Sign-off levels.
const (
	LevelSME   = "sme"
	LevelOwner = "owner"
)

// SignOff advances a requirement through the sign-off chain.
//
//	sme:   draft -> sme_approved; anything else is an idempotent no-op
//	owner: draft -> owner_approved; sme_approved -> confirmed;
//	       owner_approved and confirmed are no-ops
//
// A no-op returns the record unchanged, with no signer stamp. A real
// transition writes status, signer and timestamp in one statement.
func (e Engine) SignOff(ctx context.Context, engagementID, reqID, level, signedBy string) (domain.Requirement, error) {
	if level != LevelSME && level != LevelOwner {
		return domain.Requirement{}, ValidationError{Msg: "sign-off level must be sme or owner"}
	}
	if signedBy == "" {
		return domain.Requirement{}, ValidationError{Msg: "signed_by required"}
	}
	req, err := e.Repo.GetRequirement(ctx, engagementID, reqID)
	if err != nil {
		return domain.Requirement{}, wrapStore("get requirement "+reqID, err)
	}

	next, ok := nextSignOff(level, req.SignOffStatus)
	if !ok {
		return req, nil
	}

	at := e.nowRFC3339()
	updated, err := e.Repo.UpdateRequirement(ctx, engagementID, reqID, repo.RequirementUpdate{
		SignOffStatus: &next,
		SignOffBy:     &signedBy,
		SignOffAt:     &at,
	})
	if err != nil {
		return domain.Requirement{}, wrapStore("sign off "+reqID, err)
	}
	if err := e.Events.Append(ctx, "requirement.signed_off", engagementID, "requirement", reqID,
		signedBy, events.EventPayload{"level": level, "from": req.SignOffStatus, "to": next}); err != nil {
		e.Log.Warn("event not recorded", zap.String("type", "requirement.signed_off"), zap.Error(err))
	}
	return updated, nil
}

func nextSignOff(level, current string) (string, bool) {
	switch level {
	case LevelSME:
		if current == domain.SignOffDraft {
			return domain.SignOffSMEApproved, true
		}
	case LevelOwner:
		switch current {
		case domain.SignOffDraft:
			return domain.SignOffOwnerApproved, true
		case domain.SignOffSMEApproved:
			return domain.SignOffConfirmed, true
		}
	}
	return "", false
}
