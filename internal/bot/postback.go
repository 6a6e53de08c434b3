package bot

import (
	"context"

	"github.com/chiaheng/health-linebot-go/internal/account"
	"github.com/chiaheng/health-linebot-go/internal/lineutil"
	"github.com/chiaheng/health-linebot-go/internal/state"
)

// dispatchPostback routes a button press by its token.
func (d *Dispatcher) dispatchPostback(ctx context.Context, conv *state.Conversation, data string) (*Result, error) {
	switch data {
	case postbackCorrect:
		return d.confirmRegistration(ctx, conv)
	case postbackIncorrect:
		return d.restartRegistration(ctx, conv)
	case postbackStart:
		res := &Result{}
		res.reply(activityMenu())
		return res, nil
	case postbackLogout:
		return d.logout(ctx, conv)
	case postbackMonitor:
		return d.collectActivity(ctx, conv, account.HealthMeasurement, titleMonitor)
	case postbackEducate:
		return d.collectActivity(ctx, conv, account.HealthEducation, titleEducate)
	case postbackExercise:
		return d.collectActivity(ctx, conv, account.Exercise, titleExercise)
	}

	d.log.WithUserID(conv.UserID).WithField("data", data).Warn("Unknown postback token")
	return &Result{}, nil
}

// confirmRegistration submits the collected profile to the account service.
func (d *Dispatcher) confirmRegistration(ctx context.Context, conv *state.Conversation) (*Result, error) {
	res := &Result{}

	err := d.account.RegisterMember(ctx, conv.Name, conv.NationalID, conv.Phone)
	switch {
	case err == nil:
		conv.Registered = true
		conv.ResetFlow()
		d.recordFlow(state.FlowNewMember, "registered")
		res.reply(lineutil.NewTextMessage(msgRegistered))
		return res, d.save(ctx, conv)

	case account.StatusCode(err) != 0:
		d.recordFlow(state.FlowNewMember, "register_failed")
		res.reply(lineutil.NewTextMessage(msgRegisterFailed))
		return res, nil

	default:
		d.recordFlow(state.FlowNewMember, "error")
		d.log.WithUserID(conv.UserID).WithError(err).Error("Registration call failed")
		res.reply(lineutil.NewTextMessage(msgContactAdmin))
		return res, nil
	}
}

// restartRegistration wipes the record and re-enters the name step.
func (d *Dispatcher) restartRegistration(ctx context.Context, conv *state.Conversation) (*Result, error) {
	conv.ResetAll()
	conv.Flow = state.FlowNewMember
	conv.Step = 1
	d.recordFlow(state.FlowNewMember, "restarted")

	res := &Result{}
	res.reply(lineutil.NewTextMessage(msgAskNameAgain))
	return res, d.save(ctx, conv)
}

// logout resets the conversation and unlinks the account.
func (d *Dispatcher) logout(ctx context.Context, conv *state.Conversation) (*Result, error) {
	res := &Result{}

	conv.ResetFlow()
	saveErr := d.save(ctx, conv)

	err := d.account.Logout(ctx, conv.UserID)
	switch {
	case err == nil:
		res.reply(lineutil.NewTextMessage(msgLoggedOut))
	case account.StatusCode(err) != 0:
		res.reply(lineutil.NewTextMessage(msgPleaseRetry))
	default:
		d.log.WithUserID(conv.UserID).WithError(err).Error("Logout call failed")
		res.reply(lineutil.NewTextMessage(msgContactAdmin))
	}

	return res, saveErr
}

// collectActivity adds a point on the given counter and always pushes
// the follow-up menu so the user can continue.
func (d *Dispatcher) collectActivity(ctx context.Context, conv *state.Conversation, counter account.Counter, title string) (*Result, error) {
	res := &Result{}

	value, err := d.account.AddPoint(ctx, counter, conv.UserID)
	if err != nil {
		d.log.WithUserID(conv.UserID).WithError(err).Warn("Point collection failed")
		res.reply(lineutil.NewTextMessage(failureText(err, msgPointFailed)))
	} else {
		d.recordPoint(counter)
		res.reply(
			lineutil.NewProgressMessage(progressAltText, title, progressCaption, value, counter.Target),
			lineutil.NewTextMessage(msgPointAdded),
		)
	}

	res.push(otherOperationMenu())
	return res, nil
}
