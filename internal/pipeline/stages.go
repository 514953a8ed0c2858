package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"hotel_scout/internal/adapters/observability"
	"hotel_scout/internal/cost"
	"hotel_scout/internal/domain"
	"hotel_scout/internal/extract"
)

const (
	maxRawResults = 15 // raw search items fed to the extraction prompt
	maxCandidates = 10 // extracted records kept per search

	unableToCalculate = "Unable to calculate"
	contactForPricing = "Contact hotel for pricing"
)

// parseInput turns the free-text query into a SearchRequest via the LLM.
// This stage has no fallback: without parameters no query can be built, so
// any failure here is fatal.
func (p *Pipeline) parseInput(ctx context.Context, s State) State {
	if s.Params != nil {
		return s.withTrace("Using pre-supplied search parameters, skipping input parsing")
	}
	s = s.withTrace("Parsing user input to extract location, dates, guests, budget and room type")

	text, err := p.llm.Complete(ctx, parseSystemPrompt, s.Query)
	if err != nil {
		return s.withError("Input parsing failed: " + err.Error())
	}
	payload, err := extract.CleanObjectPayload(text)
	if err != nil {
		return s.withError("Input parsing failed: " + err.Error())
	}

	check, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(searchParamsSchema),
		gojsonschema.NewStringLoader(payload),
	)
	if err != nil {
		return s.withError("Input parsing failed: " + err.Error())
	}
	if !check.Valid() {
		msgs := make([]string, 0, len(check.Errors()))
		for _, e := range check.Errors() {
			msgs = append(msgs, e.String())
		}
		return s.withError("Input parsing failed: invalid search parameters: " + strings.Join(msgs, "; "))
	}

	var params domain.SearchRequest
	if err := json.Unmarshal([]byte(payload), &params); err != nil {
		return s.withError("Input parsing failed: " + err.Error())
	}
	s.Params = &params
	return s.withTrace(fmt.Sprintf(
		"Parsed search parameters: location=%s check_in=%s check_out=%s guests=%d budget=%s room_type=%s",
		params.Location, params.CheckIn, params.CheckOut, params.Guests, params.Budget, params.RoomType))
}

// searchHotels queries the web search provider and delegates to the
// extraction normalizer. Missing fields default to sentinels; both
// enrichment flags are raised unconditionally and the enrich stage re-checks
// per field what is actually missing.
func (p *Pipeline) searchHotels(ctx context.Context, s State) State {
	if s.Params == nil {
		return s.withError("Search parameters are missing. Input parsing may have failed.")
	}
	params := *s.Params

	queries := searchQueries(params)
	s = s.withTrace(fmt.Sprintf("Running %d search queries for hotels in %s", len(queries), params.Location))

	var all []domain.SearchResult
	for _, q := range queries {
		results, err := p.search.Search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return s.withError("Hotel search cancelled: " + ctx.Err().Error())
			}
			s = s.withTrace("Search query failed, continuing with remaining queries: " + err.Error())
			continue
		}
		all = append(all, results...)
	}
	if len(all) > maxRawResults {
		all = all[:maxRawResults]
		s = s.withTrace(fmt.Sprintf("Limiting to %d results to prevent prompt overflow", maxRawResults))
	}
	s.RawResults = all
	s = s.withTrace(fmt.Sprintf("Collected %d raw search results", len(all)))

	res := p.norm.Extract(ctx, structureSystemPrompt, buildStructurePrompt(all), all)
	observability.ObserveExtraction(res.Outcome.String(), res.Retries)
	switch res.Outcome {
	case extract.Parsed:
		s = s.withTrace(fmt.Sprintf("Model structured %d hotels after %d attempt(s)", len(res.Hotels), res.Attempts))
	case extract.Fallback:
		s = s.withTrace(fmt.Sprintf("Extraction fell back to raw results, %d placeholder hotels", len(res.Hotels)))
	case extract.Failed:
		s = s.withTrace("Extraction produced no hotels and no raw results were available to fall back on")
	}

	hotels := make([]domain.Candidate, 0, maxCandidates)
	for _, h := range res.Hotels {
		if len(hotels) == maxCandidates {
			break
		}
		hotels = append(hotels, candidateFrom(h))
	}
	s.Hotels = hotels
	s.NeedsImages = true
	s.NeedsContact = true
	return s.withTrace(fmt.Sprintf("Built %d hotel candidates; images, contact and costs still pending", len(hotels)))
}

func candidateFrom(h extract.RawHotel) domain.Candidate {
	name := strings.TrimSpace(h.Name)
	if name == "" {
		name = "Unknown Hotel"
	}
	c := domain.NewCandidate(name)
	if len(h.Amenities) > 0 {
		c.Amenities = h.Amenities
	}
	if strings.TrimSpace(h.RoomPrice) != "" {
		c.RoomPrice = h.RoomPrice
	}
	if strings.TrimSpace(h.Source) != "" {
		c.SourceURL = h.Source
	}
	if strings.TrimSpace(h.BookingLink) != "" {
		c.BookingLink = h.BookingLink
	}
	return c
}

// computeCosts fills tax, service charge and total for every candidate with
// a parseable nightly price. A missing price degrades only that candidate.
func (p *Pipeline) computeCosts(ctx context.Context, s State) State {
	if s.Params == nil {
		return s.withError("Search parameters are missing. Cannot calculate costs.")
	}
	if s.Hotels == nil {
		return s.withError("Hotel data is missing. Hotel search may have failed.")
	}

	nights := cost.Nights(s.Params.CheckIn, s.Params.CheckOut)
	s = s.withTrace(fmt.Sprintf("Calculating costs for %d nights (%s to %s)", nights, s.Params.CheckIn, s.Params.CheckOut))

	hotels := make([]domain.Candidate, len(s.Hotels))
	copy(hotels, s.Hotels)
	for i := range hotels {
		nightly := cost.ExtractPrice(hotels[i].RoomPrice)
		if nightly <= 0 {
			hotels[i].TaxAmount = unableToCalculate
			hotels[i].ServiceCharge = unableToCalculate
			hotels[i].TotalCost = contactForPricing
			s = s.withTrace(fmt.Sprintf("%s: no parseable nightly price, skipping cost computation", hotels[i].Name))
			continue
		}
		rate, slab := cost.TaxSlab(nightly)
		b := cost.Compute(nightly, nights, rate)
		hotels[i].TaxAmount = b.TaxFmt
		hotels[i].ServiceCharge = b.ServiceFmt
		hotels[i].TotalCost = b.TotalFmt
		s = s.withTrace(fmt.Sprintf("%s: nightly %s, slab %s, total %s",
			hotels[i].Name, cost.FormatINR(nightly), slab, b.TotalFmt))
	}
	s.Hotels = hotels
	return s.withTrace(fmt.Sprintf("Calculated costs for %d hotels", len(hotels)))
}

// enrich fills images and contact from the places provider for candidates
// still at sentinel values. Never fatal: every failure is trace-only.
func (p *Pipeline) enrich(ctx context.Context, s State) State {
	if p.places == nil || !p.places.Configured() {
		return s.withTrace("Places enrichment skipped (provider not configured)")
	}
	if s.Params == nil || s.Hotels == nil {
		return s.withTrace("Places enrichment skipped (missing upstream data)")
	}

	hotels := make([]domain.Candidate, len(s.Hotels))
	copy(hotels, s.Hotels)
	enriched := 0
	for i := range hotels {
		needImages := imagesMissing(hotels[i].Images)
		needContact := hotels[i].Contact == domain.NotAvailable
		if !needImages && !needContact {
			continue
		}
		place, err := p.places.Lookup(ctx, hotels[i].Name, s.Params.Location)
		if err != nil {
			if ctx.Err() != nil {
				s = s.withTrace("Places enrichment stopped early: " + ctx.Err().Error())
				break
			}
			s = s.withTrace(fmt.Sprintf("Places lookup failed for %s (non-critical): %v", hotels[i].Name, err))
			continue
		}
		if place == nil {
			continue
		}
		// only fill fields still at sentinel; never overwrite upstream data
		if needImages && len(place.Photos) > 0 {
			hotels[i].Images = place.Photos
		}
		if needContact && place.Phone != "" {
			hotels[i].Contact = place.Phone
		}
		enriched++
	}
	s.Hotels = hotels
	return s.withTrace(fmt.Sprintf("Enrichment complete, %d hotels updated", enriched))
}

func imagesMissing(images []string) bool {
	return len(images) == 0 || (len(images) == 1 && images[0] == domain.NotAvailable)
}

// finalize reformats amenities, stamps the completion time and publishes the
// working result. Only reached when no prior error was recorded.
func (p *Pipeline) finalize(ctx context.Context, s State) State {
	if s.Params == nil || s.Hotels == nil {
		return s.withError("Final response generation failed: upstream data missing")
	}

	hotels := make([]domain.Candidate, len(s.Hotels))
	copy(hotels, s.Hotels)
	for i := range hotels {
		hotels[i].Amenities = FormatAmenities(hotels[i].Amenities)
	}
	s.Hotels = hotels
	s.Final = &domain.HotelSearchResult{
		SearchParams: *s.Params,
		Hotels:       hotels,
		Version:      1,
		Timestamp:    p.now().Format(time.RFC3339),
	}
	return s.withTrace(fmt.Sprintf("Final response ready with %d hotels", len(hotels)))
}
