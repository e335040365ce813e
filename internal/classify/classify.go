// Package classify derives UI-facing facts from a promise evaluation
// response: feasibility tier, confidence tone, on-time label, categorized
// drivers and recommended actions. Classification is a pure function over
// the response and never performs I/O.
package classify

import (
	"fmt"
	"strings"
	"time"

	"promise-console/internal/models"
)

type Tier string

const (
	TierConfirmed Tier = "confirmed"
	TierAtRisk    Tier = "at-risk"
	TierBlocked   Tier = "blocked"
)

type Tone string

const (
	ToneGreen  Tone = "green"
	ToneYellow Tone = "yellow"
	ToneRed    Tone = "red"
)

// OnTimeLabel is empty when the response carries no desired date.
type OnTimeLabel string

const (
	OnTimeNone     OnTimeLabel = ""
	OnTimeAdjusted OnTimeLabel = "Adjusted"
	OnTimeOnTime   OnTimeLabel = "On Time"
	OnTimeLate     OnTimeLabel = "Late"
)

type DriverCategory string

const (
	DriverInventory     DriverCategory = "inventory"
	DriverLeadTime      DriverCategory = "lead-time"
	DriverBusinessRules DriverCategory = "business-rules"
	DriverSupply        DriverCategory = "supply"
)

// Driver is one reason/blocker string assigned to exactly one category.
type Driver struct {
	Category DriverCategory
	Text     string
}

type ActionIcon string

const (
	IconRelocate         ActionIcon = "relocate"
	IconAccelerateSupply ActionIcon = "accelerate-supply"
	IconSplitShipment    ActionIcon = "split-shipment"
	IconGeneric          ActionIcon = "generic"
)

type Action struct {
	Label  string
	Icon   ActionIcon
	Impact string
}

// DerivedFacts is everything the result view needs that is not already a
// literal field of the response.
type DerivedFacts struct {
	Tier           Tier
	StatusLabel    string
	StatusTone     Tone
	ConfidenceTone Tone
	OnTimeLabel    OnTimeLabel
	Drivers        []Driver
	Actions        []Action
	// Healthy reports that no recommended actions apply.
	Healthy       bool
	HasShortage   bool
	TotalShortage int
}

var shortageKeywords = []string{"shortage", "insufficient", "low stock", "supply"}

// Classify derives display facts from a promise response. It is total over
// all valid responses, including the synthesized never-throw failure
// responses produced by the transport client.
func Classify(resp models.PromiseResponse) DerivedFacts {
	facts := DerivedFacts{
		StatusLabel:    statusLabel(resp.Status),
		StatusTone:     statusTone(resp.Status),
		ConfidenceTone: confidenceTone(resp.Confidence),
		OnTimeLabel:    onTimeLabel(resp),
		Drivers:        CategorizeDrivers(resp.Reasons, resp.Blockers),
	}

	for _, plan := range resp.Plan {
		shortage := plan.EffectiveShortage()
		if shortage > 0 {
			facts.HasShortage = true
			facts.TotalShortage += shortage
		}
	}

	facts.Tier = tier(resp, facts.HasShortage)
	facts.Actions, facts.Healthy = recommendedActions(resp, facts.HasShortage)
	return facts
}

// tier applies the fixed precedence order: blocked wins over at-risk wins
// over confirmed.
func tier(resp models.PromiseResponse, hasShortage bool) Tier {
	if resp.Status == models.StatusCannotFulfill || resp.PromiseDate == nil {
		return TierBlocked
	}
	if resp.Confidence == models.ConfidenceLow ||
		resp.Status == models.StatusCannotPromiseReliably ||
		hasShortage {
		return TierAtRisk
	}
	return TierConfirmed
}

func statusLabel(status models.PromiseStatus) string {
	switch status {
	case models.StatusOK:
		return "Confirmed"
	case models.StatusCannotPromiseReliably:
		return "At Risk"
	default:
		return "Cannot Fulfill"
	}
}

func statusTone(status models.PromiseStatus) Tone {
	switch status {
	case models.StatusOK:
		return ToneGreen
	case models.StatusCannotPromiseReliably:
		return ToneYellow
	default:
		return ToneRed
	}
}

func confidenceTone(confidence models.Confidence) Tone {
	switch confidence {
	case models.ConfidenceHigh:
		return ToneGreen
	case models.ConfidenceMedium:
		return ToneYellow
	default:
		return ToneRed
	}
}

func onTimeLabel(resp models.PromiseResponse) OnTimeLabel {
	if resp.DesiredDate == nil || *resp.DesiredDate == "" {
		return OnTimeNone
	}
	if resp.AdjustedDueToNoEarlyDelivery {
		return OnTimeAdjusted
	}
	if resp.OnTime != nil && *resp.OnTime {
		return OnTimeOnTime
	}
	return OnTimeLate
}

// CategorizeDrivers partitions every reason and blocker string into exactly
// one category. Categories are tested in a fixed order and the first match
// wins; a string matching nothing falls back to business-rules.
func CategorizeDrivers(reasons, blockers []string) []Driver {
	all := make([]string, 0, len(reasons)+len(blockers))
	all = append(all, reasons...)
	all = append(all, blockers...)

	drivers := make([]Driver, 0, len(all))
	for _, text := range all {
		drivers = append(drivers, Driver{Category: CategorizeDriver(text), Text: text})
	}
	return drivers
}

// CategorizeDriver assigns one driver string to its category by
// case-insensitive keyword match.
func CategorizeDriver(text string) DriverCategory {
	lower := strings.ToLower(text)

	if containsAny(lower, "stock", "inventory", "warehouse") {
		return DriverInventory
	}
	if containsAny(lower, "lead time", "lead-time", "processing") {
		return DriverLeadTime
	}
	if containsAny(lower, "weekend", "cutoff", "rule", "adjusted", "buffer") {
		return DriverBusinessRules
	}
	if containsAny(lower, "po", "incoming", "supply", "purchase") {
		return DriverSupply
	}
	return DriverBusinessRules
}

func containsAny(s string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// recommendedActions returns the action list and whether the promise is
// healthy (no actions apply). Backend-supplied options with non-empty
// descriptions are used verbatim; otherwise a fixed fallback set is produced
// when confidence is below HIGH or any shortage signal exists.
func recommendedActions(resp models.PromiseResponse, hasShortage bool) ([]Action, bool) {
	backend := make([]Action, 0, len(resp.Options))
	for _, opt := range resp.Options {
		if opt.Description == "" {
			continue
		}
		backend = append(backend, Action{
			Label:  opt.Description,
			Icon:   iconForOption(opt.Type),
			Impact: opt.Impact,
		})
	}

	shortageSignal := hasShortage ||
		anyMatchesShortage(resp.Reasons) ||
		anyMatchesShortage(resp.Blockers)

	if len(backend) > 0 {
		return backend, false
	}
	if resp.Confidence != models.ConfidenceHigh || shortageSignal {
		return []Action{
			{Label: "Review shortage items and check alternate warehouses", Icon: IconRelocate},
			{Label: "Expedite supplier purchase orders", Icon: IconAccelerateSupply},
			{Label: "Consider split shipment options", Icon: IconSplitShipment},
		}, false
	}
	return nil, true
}

func iconForOption(optType string) ActionIcon {
	if optType == "" {
		return IconGeneric
	}
	if strings.Contains(optType, "warehouse") {
		return IconRelocate
	}
	if strings.Contains(optType, "expedite") || strings.Contains(optType, "po") {
		return IconAccelerateSupply
	}
	if strings.Contains(optType, "split") || strings.Contains(optType, "shipment") {
		return IconSplitShipment
	}
	return IconGeneric
}

func anyMatchesShortage(lines []string) bool {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, keyword := range shortageKeywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}

// MessageTone selects the register of a generated customer message.
type MessageTone string

const (
	ToneFormal   MessageTone = "formal"
	ToneFriendly MessageTone = "friendly"
)

// CustomerMessage renders a copy-ready delivery commitment message for the
// customer from an evaluated response.
func CustomerMessage(resp models.PromiseResponse, tone MessageTone) string {
	promiseDate := "N/A"
	if resp.PromiseDate != nil && *resp.PromiseDate != "" {
		if parsed, err := time.Parse("2006-01-02", *resp.PromiseDate); err == nil {
			promiseDate = parsed.Format("January 02, 2006")
		}
	}

	var confidenceText string
	switch resp.Confidence {
	case models.ConfidenceHigh:
		confidenceText = "We are highly confident"
	case models.ConfidenceMedium:
		confidenceText = "We are fairly confident"
	default:
		confidenceText = "We have some concerns"
	}

	if tone == ToneFriendly {
		return fmt.Sprintf(
			"Hi there!\n\nWe can deliver your order by %s.\n\n%s we can meet this commitment based on inventory and supply availability.\n\nLet us know if you need anything else!",
			promiseDate, confidenceText)
	}
	return fmt.Sprintf(
		"Dear Valued Customer,\n\nWe can deliver your order by %s.\n\n%s in meeting this commitment based on current inventory levels and expected supply availability.\n\nPlease reach out if you have any questions.\n\nBest regards,\nOrder Management Team",
		promiseDate, confidenceText)
}
