// Package abci provides error handling shared by the begin and end blockers.
// Blockers never return errors to the consensus engine; failures are
// classified, logged and emitted as events instead.
package abci

import (
	"fmt"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// EventTypeBlockerError is emitted for every handled blocker failure.
const EventTypeBlockerError = "abci_blocker_error"

// ErrorSeverity classifies blocker failures for operators.
type ErrorSeverity int

const (
	// SeverityLow covers housekeeping failures such as stale index cleanup.
	SeverityLow ErrorSeverity = iota

	// SeverityMedium degrades one epoch for one subnet.
	SeverityMedium

	// SeverityHigh means a subnet skipped role selection or settlement.
	SeverityHigh

	// SeverityCritical is reserved for recovered panics.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// BlockerErrorHandler logs and emits blocker failures for one module and block.
type BlockerErrorHandler struct {
	moduleName string
	ctx        sdk.Context
	handled    int
}

// NewBlockerErrorHandler creates a new error handler for the given module.
func NewBlockerErrorHandler(ctx sdk.Context, moduleName string) *BlockerErrorHandler {
	return &BlockerErrorHandler{
		moduleName: moduleName,
		ctx:        ctx,
	}
}

// Handled returns how many failures this handler has recorded.
func (h *BlockerErrorHandler) Handled() int {
	return h.handled
}

// HandleError records err for operation. Extra attributes are appended to the
// emitted event. A nil err is ignored.
func (h *BlockerErrorHandler) HandleError(operation string, severity ErrorSeverity, err error, attrs ...sdk.Attribute) {
	if err == nil {
		return
	}
	h.handled++

	keyvals := []interface{}{
		"module", h.moduleName,
		"operation", operation,
		"severity", severity.String(),
		"error", err.Error(),
	}
	for _, attr := range attrs {
		keyvals = append(keyvals, attr.Key, attr.Value)
	}

	logger := h.ctx.Logger()
	switch severity {
	case SeverityCritical:
		logger.Error("CRITICAL ABCI error", keyvals...)
	case SeverityHigh:
		logger.Error("ABCI blocker error", keyvals...)
	case SeverityMedium:
		logger.Warn("ABCI blocker warning", keyvals...)
	default:
		logger.Debug("ABCI blocker minor issue", keyvals...)
	}

	eventAttrs := append([]sdk.Attribute{
		sdk.NewAttribute("module", h.moduleName),
		sdk.NewAttribute("operation", operation),
		sdk.NewAttribute("severity", severity.String()),
		sdk.NewAttribute("error", err.Error()),
		sdk.NewAttribute("height", strconv.FormatInt(h.ctx.BlockHeight(), 10)),
	}, attrs...)
	h.ctx.EventManager().EmitEvent(sdk.NewEvent(EventTypeBlockerError, eventAttrs...))
}

// WrapError handles err and reports whether there was one.
//
//	if handler.WrapError("clear_roles", SeverityLow, err) {
//	    continue
//	}
func (h *BlockerErrorHandler) WrapError(operation string, severity ErrorSeverity, err error) bool {
	if err != nil {
		h.HandleError(operation, severity, err)
		return true
	}
	return false
}

// WrapSubnetError is WrapError with the failing subnet attached.
func (h *BlockerErrorHandler) WrapSubnetError(operation string, subnetID uint32, severity ErrorSeverity, err error) bool {
	if err != nil {
		h.HandleError(operation, severity, err,
			sdk.NewAttribute("subnet_id", strconv.FormatUint(uint64(subnetID), 10)))
		return true
	}
	return false
}

// Guard runs fn and turns a panic into a critical handled error so one
// misbehaving phase cannot halt block production. It reports whether fn
// completed without panicking.
func (h *BlockerErrorHandler) Guard(operation string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.HandleError(operation, SeverityCritical, fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()
	fn()
	return true
}
