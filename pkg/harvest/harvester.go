package harvest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"xhsharvest/pkg/browser"
	"xhsharvest/pkg/config"
	errs "xhsharvest/pkg/errors"
	"xhsharvest/pkg/logger"
	"xhsharvest/pkg/pacing"
	"xhsharvest/pkg/ratelimit"
	"xhsharvest/pkg/retry"
	"xhsharvest/pkg/storage"
	"xhsharvest/pkg/xhs"
)

// Outcome tags how one step of a harvest went. Fallible steps never abort
// the call; they record their outcome here instead.
type Outcome string

const (
	// OutcomeOK means the step completed and contributed normally
	OutcomeOK Outcome = "ok"
	// OutcomeSkipped means the step did not run (nothing to do)
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDegraded means the step failed and contributed nothing
	OutcomeDegraded Outcome = "degraded"
)

// StepOutcomes reports per-step outcomes of one harvest
type StepOutcomes struct {
	Navigation   Outcome `json:"navigation"`
	Filters      Outcome `json:"filters"`
	InitialState Outcome `json:"initial_state"`
	ScrollLoop   Outcome `json:"scroll_loop"`
	Artifacts    Outcome `json:"artifacts"`
}

// Result is what one harvest returns. The caller always receives a Result,
// even when empty; only a filter validation failure surfaces as an error.
type Result struct {
	Items []*xhs.Feed `json:"items"`
	// Total is the number of items returned
	Total int `json:"total"`
	// HasMore is an approximation, not a pagination cursor: true whenever
	// the harvest completed without degradation and collected any items
	HasMore bool `json:"hasMore"`
	// Degraded is set when any step contributed less than it should have
	Degraded bool         `json:"degraded"`
	Steps    StepOutcomes `json:"steps"`
}

// scrollWindow is the refill period of the scroll rate limiter
const scrollWindow = time.Minute

// selectors and script fragments the orchestrator drives the page with
const (
	filterTriggerSelector = "div.filter"
	filterPanelReadyExpr  = "() => document.querySelector('div.filter-panel') !== null"
	initialStateReadyExpr = "() => window.__INITIAL_STATE__ !== undefined"
	scrollToBottomExpr    = "window.scrollTo(0, document.body.scrollHeight)"
)

// initialStateExpr serializes the page state blob. Two known circular
// properties and any function values are stripped; if serialization still
// throws, only the known-stable sub-paths are extracted.
const initialStateExpr = `
() => {
    if (window.__INITIAL_STATE__) {
        try {
            return JSON.stringify(window.__INITIAL_STATE__, (key, value) => {
                if (key === 'dep' || key === 'computed' || typeof value === 'function') {
                    return undefined;
                }
                return value;
            });
        } catch (e) {
            const state = window.__INITIAL_STATE__;
            if (state && state.Main && state.Main.feedData) {
                return JSON.stringify({
                    Main: {
                        feedData: state.Main.feedData
                    },
                    search: state.search
                });
            }
            return "{}";
        }
    }
    return "";
}
`

// Harvester drives one browser page through the search pipeline: navigate,
// apply filters, intercept API traffic, read the embedded state blob, then
// scroll until the target count is reached or progress stalls.
type Harvester struct {
	cfg       *config.Config
	log       logger.Logger
	delayer   *pacing.Delayer
	limiter   ratelimit.Limiter
	retrier   *retry.Retrier
	artifacts *storage.Manager
}

// Option customizes a Harvester
type Option func(*Harvester)

// WithDelayer overrides the pacing delayer (deterministic in tests)
func WithDelayer(d *pacing.Delayer) Option {
	return func(h *Harvester) { h.delayer = d }
}

// WithLimiter overrides the scroll rate limiter
func WithLimiter(l ratelimit.Limiter) Option {
	return func(h *Harvester) { h.limiter = l }
}

// WithArtifactSink enables the diagnostic artifact dump path
func WithArtifactSink(m *storage.Manager) Option {
	return func(h *Harvester) { h.artifacts = m }
}

// NewHarvester creates a Harvester over the given configuration
func NewHarvester(cfg *config.Config, log logger.Logger, opts ...Option) *Harvester {
	scrolls := cfg.RateLimit.ScrollsPerMinute
	if scrolls <= 0 {
		scrolls = 20
	}

	h := &Harvester{
		cfg:     cfg,
		log:     log,
		delayer: pacing.NewDelayer(cfg.Harvest.MinDelay, cfg.Harvest.MaxDelay),
		limiter: ratelimit.NewTokenBucket(scrolls, scrollWindow),
		retrier: retry.NewNavigationRetrier(&cfg.Retry, log),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Search runs one harvest for a keyword. It returns a non-nil error only
// when the filter selection fails translation or validation; every other
// failure degrades into a partial (possibly empty) Result.
//
// The page handle is borrowed, never owned: the caller starts and stops the
// browser session.
func (h *Harvester) Search(ctx context.Context, page browser.Page, keyword string, maxItems int, filters *xhs.FilterSelection) (*Result, error) {
	if maxItems <= 0 {
		maxItems = h.cfg.Harvest.MaxItems
	}

	result := &Result{
		Steps: StepOutcomes{
			Navigation:   OutcomeOK,
			Filters:      OutcomeSkipped,
			InitialState: OutcomeOK,
			ScrollLoop:   OutcomeOK,
			Artifacts:    OutcomeSkipped,
		},
	}

	// Filters are translated and validated before any browser interaction,
	// so a bad selection costs nothing and a partial filter set is never
	// applied.
	options, err := h.translateFilters(filters)
	if err != nil {
		h.log.WithError(err).Error("Filter selection rejected")
		return result, err
	}

	log := h.log.WithFields(map[string]interface{}{
		"keyword":   keyword,
		"max_items": maxItems,
	})
	log.Info("Starting harvest")

	acc := NewAccumulator()

	searchURL := xhs.SearchURLWithSource(keyword, h.cfg.Platform.SourceTag)
	if err := h.navigate(ctx, page, searchURL); err != nil {
		log.WithError(err).Error("Navigation failed, returning empty result")
		result.Steps.Navigation = OutcomeDegraded
		result.Degraded = true
		return result, nil
	}

	if len(options) > 0 {
		result.Steps.Filters = OutcomeOK
		if err := h.applyFilters(ctx, page, options); err != nil {
			log.WithError(err).Warn("Filter application incomplete, continuing unfiltered")
			result.Steps.Filters = OutcomeDegraded
			result.Degraded = true
		}
	}

	in := newIntake(acc, h.log)
	detach := page.OnResponse(h.responseListener(in))
	finalized := false
	finalize := func() {
		if finalized {
			return
		}
		finalized = true
		detach()
		in.close()
	}
	// Listener must come off on every exit path or it leaks into the next
	// harvest on the same page
	defer finalize()

	if err := page.WaitForLoadState(h.cfg.Browser.NavigationTimeout); err != nil {
		log.WithError(err).Debug("Load state wait expired before state extraction")
	}

	rawState, rawFeeds, err := h.extractInitialState(page, in)
	if err != nil {
		log.WithError(err).Warn("State blob unavailable, relying on scroll loop")
		result.Steps.InitialState = OutcomeDegraded
		result.Degraded = true
	}

	if scrollErr := h.scrollLoop(ctx, page, acc, keyword, maxItems); scrollErr != nil {
		log.WithError(scrollErr).Warn("Scroll loop ended early")
		result.Steps.ScrollLoop = OutcomeDegraded
		result.Degraded = true
	}

	// Stop producers and drain queued records before the final read
	finalize()

	acc.Truncate(maxItems)
	result.Items = acc.Items()
	result.Total = len(result.Items)
	// A degraded run must not promise more results upstream: failure paths
	// hand back whatever was accumulated with hasMore cleared
	result.HasMore = result.Total > 0 && !result.Degraded

	if h.cfg.Harvest.SaveArtifacts && h.artifacts != nil {
		result.Steps.Artifacts = OutcomeOK
		if err := h.saveArtifacts(rawState, rawFeeds, result.Items); err != nil {
			log.WithError(err).Warn("Artifact dump failed")
			result.Steps.Artifacts = OutcomeDegraded
		}
	}

	logger.LogHarvestProgress(keyword, result.Total, maxItems)
	log.WithField("total", result.Total).Info("Harvest complete")
	return result, nil
}

// translateFilters maps the selection to internal options, re-validates
// each, and applies the default-elision policy.
func (h *Harvester) translateFilters(filters *xhs.FilterSelection) ([]xhs.InternalFilterOption, error) {
	if filters == nil || filters.IsZero() {
		return nil, nil
	}

	options, err := xhs.TranslateFilters(*filters)
	if err != nil {
		return nil, err
	}

	applied := options[:0]
	for _, option := range options {
		if err := xhs.ValidateFilterOption(option); err != nil {
			return nil, err
		}
		if h.cfg.Harvest.ElideDefaults && option.OptionIndex == 1 {
			// Index 1 is the platform default; clicking it is a no-op
			continue
		}
		applied = append(applied, option)
	}
	return applied, nil
}

// navigate loads the search page, retrying transient failures
func (h *Harvester) navigate(ctx context.Context, page browser.Page, url string) error {
	return h.retrier.WithContext(ctx).Do(func() error {
		return page.Navigate(url)
	})
}

// applyFilters opens the filter panel and activates each option in
// ascending group order, pausing between clicks. The panel's layout shifts
// after every selection, which is why order matters.
func (h *Harvester) applyFilters(ctx context.Context, page browser.Page, options []xhs.InternalFilterOption) error {
	if err := page.Hover(filterTriggerSelector); err != nil {
		return errs.Newf(errs.ErrorTypeNavigation, "opening filter panel: %v", err)
	}
	if err := page.WaitForFunction(filterPanelReadyExpr, h.cfg.Harvest.FilterPanelTimeout); err != nil {
		return errs.Newf(errs.ErrorTypeTimeout, "filter panel did not materialize: %v", err)
	}

	for _, option := range options {
		selector := option.Selector()
		h.log.WithFields(map[string]interface{}{
			"group":    option.GroupIndex,
			"label":    option.Label,
			"selector": selector,
		}).Debug("Applying filter option")

		if err := page.Click(selector); err != nil {
			return errs.Newf(errs.ErrorTypeNavigation, "activating filter %q: %v", option.Label, err)
		}
		// Pacing seeded by group index: reproducible in tests, varied live
		if err := h.delayer.Sleep(ctx, strconv.Itoa(option.GroupIndex)); err != nil {
			return err
		}
	}
	return nil
}

// responseListener builds the interception callback. Parse failures inside
// it are swallowed so a single bad response never kills the page's event
// loop.
func (h *Harvester) responseListener(in *intake) func(browser.Response) {
	return func(resp browser.Response) {
		if !xhs.IsSearchAPIURL(resp.URL()) || resp.Status() != 200 {
			return
		}

		body, err := resp.Body()
		if err != nil {
			h.log.WithError(err).Warn("Reading intercepted response body")
			return
		}

		var payload xhs.SearchAPIResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			h.log.WithError(err).Warn("Parsing intercepted search response")
			return
		}

		logger.LogIntercept(resp.URL(), resp.Status(), len(payload.Data.Items))
		in.offerBatch(payload.Data.Items)
	}
}

// extractInitialState reads the embedded state blob and feeds its first
// screen of results into the intake. It returns the decoded state and the
// raw feed records for the artifact path.
func (h *Harvester) extractInitialState(page browser.Page, in *intake) (map[string]interface{}, []map[string]interface{}, error) {
	if err := page.WaitForFunction(initialStateReadyExpr, h.cfg.Harvest.StateTimeout); err != nil {
		return nil, nil, errs.Newf(errs.ErrorTypeStateBlob, "state blob never became defined: %v", err)
	}

	value, err := page.Evaluate(initialStateExpr)
	if err != nil {
		return nil, nil, errs.Newf(errs.ErrorTypeStateBlob, "serializing state blob: %v", err)
	}

	serialized, _ := value.(string)
	if serialized == "" {
		return nil, nil, errs.New(errs.ErrorTypeStateBlob, "state blob serialized to nothing")
	}

	var state map[string]interface{}
	if err := json.Unmarshal([]byte(serialized), &state); err != nil {
		return nil, nil, errs.Newf(errs.ErrorTypeParsing, "decoding state blob: %v", err)
	}

	rawFeeds := feedsFromState(state)
	h.log.WithField("count", len(rawFeeds)).Info("Extracted first-screen results from page state")
	in.offerBatch(rawFeeds)

	return state, rawFeeds, nil
}

// feedsFromState digs the search results out of the decoded state blob.
// They live at a fixed nested path: search.feeds._value.
func feedsFromState(state map[string]interface{}) []map[string]interface{} {
	search, _ := state["search"].(map[string]interface{})
	feeds, _ := search["feeds"].(map[string]interface{})
	value, _ := feeds["_value"].([]interface{})

	out := make([]map[string]interface{}, 0, len(value))
	for _, entry := range value {
		if record, ok := entry.(map[string]interface{}); ok {
			out = append(out, record)
		}
	}
	return out
}

// scrollLoop scrolls the page bottom-ward until the target count is met,
// the iteration cap is hit, or too many consecutive cycles add nothing.
// Each scroll triggers the platform's own infinite-scroll fetch, whose
// response the listener picks up.
func (h *Harvester) scrollLoop(ctx context.Context, page browser.Page, acc *Accumulator, keyword string, maxItems int) error {
	stagnant := 0

	for attempt := 1; acc.Size() < maxItems; attempt++ {
		if attempt > h.cfg.Harvest.MaxScrolls {
			return errs.Newf(errs.ErrorTypeTimeout, "scroll cap reached after %d cycles", h.cfg.Harvest.MaxScrolls)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		h.limiter.Wait()

		before := acc.Size()
		if _, err := page.Evaluate(scrollToBottomExpr); err != nil {
			return errs.Newf(errs.ErrorTypeNavigation, "scrolling page: %v", err)
		}

		if err := h.delayer.Sleep(ctx, keyword); err != nil {
			return err
		}
		if err := page.WaitForLoadState(h.cfg.Browser.NavigationTimeout); err != nil {
			h.log.WithError(err).Debug("Load state wait expired during scroll")
		}
		if err := pacing.WaitForStable(ctx, page, h.cfg.Harvest.StabilityTimeout); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// Still settling; the next cycle gets another chance
			h.log.WithError(err).Debug("Page stability wait expired")
		}

		gained := acc.Size() - before
		logger.LogScrollCycle(keyword, attempt, acc.Size(), gained)

		if gained == 0 {
			stagnant++
			if stagnant >= h.cfg.Harvest.MaxStagnantScrolls {
				h.log.WithField("cycles", stagnant).Info("Results exhausted upstream, stopping scroll loop")
				return nil
			}
		} else {
			stagnant = 0
		}
	}
	return nil
}

// saveArtifacts writes the diagnostic dumps. Failures here are reported to
// the caller's outcome tag only, never past it.
func (h *Harvester) saveArtifacts(state map[string]interface{}, rawFeeds []map[string]interface{}, items []*xhs.Feed) error {
	if state != nil {
		if path, err := h.artifacts.SaveInitialState(state); err != nil {
			return fmt.Errorf("state artifact: %w", err)
		} else {
			h.log.WithField("path", path).Debug("Saved state artifact")
		}
	}
	if rawFeeds != nil {
		if path, err := h.artifacts.SaveRawFeeds(rawFeeds); err != nil {
			return fmt.Errorf("raw feeds artifact: %w", err)
		} else {
			h.log.WithField("path", path).Debug("Saved raw feeds artifact")
		}
	}
	if path, err := h.artifacts.SaveParsedFeeds(items); err != nil {
		return fmt.Errorf("parsed feeds artifact: %w", err)
	} else {
		h.log.WithField("path", path).Debug("Saved parsed feeds artifact")
	}
	return nil
}
