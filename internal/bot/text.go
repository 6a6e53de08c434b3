package bot

import (
	"context"

	"github.com/chiaheng/health-linebot-go/internal/account"
	"github.com/chiaheng/health-linebot-go/internal/lineutil"
	"github.com/chiaheng/health-linebot-go/internal/state"
	"github.com/chiaheng/health-linebot-go/internal/validate"
)

// dispatchText routes a free-text message by the user's current flow.
func (d *Dispatcher) dispatchText(ctx context.Context, conv *state.Conversation, text string) (*Result, error) {
	switch conv.Flow {
	case state.FlowLinkAccount:
		return d.linkAccountStep(ctx, conv, text)
	case state.FlowNewMember:
		return d.newMemberStep(ctx, conv, text)
	default:
		return d.idleText(ctx, conv, text)
	}
}

// idleText handles text while no flow is active.
func (d *Dispatcher) idleText(ctx context.Context, conv *state.Conversation, text string) (*Result, error) {
	res := &Result{}

	switch text {
	case keywordNewMember:
		conv.Flow = state.FlowNewMember
		conv.Step = 1
		conv.ErrCount = 0
		d.recordFlow(state.FlowNewMember, "started")
		res.reply(lineutil.NewTextMessage(msgAskName))
		return res, d.save(ctx, conv)

	case keywordLink, keywordLogin:
		conv.Flow = state.FlowLinkAccount
		conv.Step = 1
		conv.ErrCount = 0
		d.recordFlow(state.FlowLinkAccount, "started")
		res.reply(lineutil.NewTextMessage(msgAskNationalID))
		return res, d.save(ctx, conv)

	case keywordCollect:
		d.collectPoint(ctx, res, conv.UserID)
		return res, nil

	case keywordAllPoints:
		res.push(operationMenu())
		return res, nil
	}

	// Free-text fallback: canned replies, registered users only.
	// Anything else stays silent.
	if conv.Registered {
		reply, ok := d.replies.Lookup(text)
		if d.metrics != nil {
			d.metrics.RecordReplyLookup(ok)
		}
		if ok {
			res.reply(lineutil.NewTextMessage(reply))
		}
	}
	return res, nil
}

// collectPoint increments the measurement counter and renders the
// progress bar with a tiered encouragement line.
func (d *Dispatcher) collectPoint(ctx context.Context, res *Result, userID string) {
	value, err := d.account.AddPoint(ctx, account.HealthMeasurement, userID)
	if err != nil {
		d.log.WithUserID(userID).WithError(err).Warn("Point collection failed")
		res.reply(lineutil.NewTextMessage(failureText(err, msgPointFailed)))
		return
	}

	d.recordPoint(account.HealthMeasurement)

	var tier string
	switch {
	case value < account.HealthMeasurement.Target:
		tier = msgPointKeepGoing
	case value == account.HealthMeasurement.Target:
		tier = msgPointComplete
	default:
		tier = msgPointAboveGoal
	}

	res.reply(
		lineutil.NewProgressMessage(progressAltText, titleCollectCard, progressCaption, value, account.HealthMeasurement.Target),
		lineutil.NewTextMessage(tier),
	)
}

// linkAccountStep handles the single step of the account-linking flow.
// Every outcome of a well-formed ID resets the flow to idle.
func (d *Dispatcher) linkAccountStep(ctx context.Context, conv *state.Conversation, text string) (*Result, error) {
	res := &Result{}

	if !validate.NationalID(text) {
		conv.ErrCount++
		res.reply(lineutil.NewTextMessage(msgIDFormatError))
		return res, d.save(ctx, conv)
	}

	err := d.account.LinkUser(ctx, text, conv.UserID)
	switch {
	case err == nil:
		d.recordFlow(state.FlowLinkAccount, "completed")
		res.reply(lineutil.NewTextMessage(msgLinked))
	case account.StatusCode(err) == 400:
		d.recordFlow(state.FlowLinkAccount, "rejected")
		detail := account.Detail(err)
		if detail == "" {
			detail = msgLinkConflict
		}
		res.reply(lineutil.NewTextMessage(detail))
	case account.StatusCode(err) != 0:
		d.recordFlow(state.FlowLinkAccount, "rejected")
		res.reply(lineutil.NewTextMessage(msgLinkConflict))
	default:
		d.recordFlow(state.FlowLinkAccount, "error")
		d.log.WithUserID(conv.UserID).WithError(err).Error("Link account call failed")
		res.reply(lineutil.NewTextMessage(msgContactAdmin))
	}

	conv.ResetFlow()
	return res, d.save(ctx, conv)
}

// newMemberStep advances the four-step registration flow.
func (d *Dispatcher) newMemberStep(ctx context.Context, conv *state.Conversation, text string) (*Result, error) {
	res := &Result{}

	switch conv.Step {
	case 1:
		conv.Name = text
		conv.Advance()
		res.reply(lineutil.NewTextMessage(msgAskNationalID))
		return res, d.save(ctx, conv)

	case 2:
		if !validate.NationalID(text) {
			conv.ErrCount++
			res.reply(lineutil.NewTextMessage(msgIDFormatError2))
			return res, d.save(ctx, conv)
		}
		conv.NationalID = text
		conv.Advance()
		res.reply(lineutil.NewTextMessage(msgAskPhone))
		return res, d.save(ctx, conv)

	case 3:
		conv.Phone = text
		conv.Advance()
		res.reply(confirmProfileMessage(conv.Name, conv.NationalID, conv.Phone))
		return res, d.save(ctx, conv)

	case 4:
		return d.newMemberLogin(ctx, conv, text)
	}

	// Step out of range, reset to a sane state.
	d.log.WithUserID(conv.UserID).WithField("step", conv.Step).Warn("Conversation at unknown step, resetting")
	conv.ResetFlow()
	return res, d.save(ctx, conv)
}

// newMemberLogin is step 4: the user logs in with their national ID.
// On a successful member lookup the flow ends, the LINE account is
// linked as a side effect, and the operation menu is pushed.
func (d *Dispatcher) newMemberLogin(ctx context.Context, conv *state.Conversation, text string) (*Result, error) {
	res := &Result{}

	if !validate.NationalID(text) {
		conv.ErrCount++
		res.reply(lineutil.NewTextMessage(msgLoginStepError))
		return res, d.save(ctx, conv)
	}

	conv.NationalID = text

	err := d.account.SearchMember(ctx, text)
	switch {
	case err == nil:
		conv.ResetFlow()
		d.recordFlow(state.FlowNewMember, "completed")

		if linkErr := d.account.LinkUser(ctx, text, conv.UserID); linkErr != nil {
			d.log.WithUserID(conv.UserID).WithError(linkErr).Warn("Post-login account link failed")
		} else {
			d.log.WithUserID(conv.UserID).Info("Linked account after login")
		}

		res.push(operationMenu())
		return res, d.save(ctx, conv)

	case account.StatusCode(err) != 0:
		res.reply(lineutil.NewTextMessage(msgPleaseRegister))
		return res, nil

	default:
		d.log.WithUserID(conv.UserID).WithError(err).Error("Member lookup failed")
		res.reply(lineutil.NewTextMessage(msgContactAdmin))
		return res, nil
	}
}

// failureText maps an account call error to user-facing text: a non-200
// status gets the operation's retry text, network or malformed
// responses get the contact-admin text.
func failureText(err error, onStatus string) string {
	if account.StatusCode(err) != 0 {
		return onStatus
	}
	return msgContactAdmin
}
