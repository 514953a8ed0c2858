package pipeline

import (
	"encoding/json"
	"fmt"

	"hotel_scout/internal/domain"
)

const parseSystemPrompt = `You are an expert at parsing hotel search queries.
Extract the following information from the user input:
- location: City or place name
- check_in: Check-in date in YYYY-MM-DD format
- check_out: Check-out date in YYYY-MM-DD format
- guests: Number of guests (integer)
- budget: Budget amount with currency (e.g., "20000 INR")
- room_type: Type of room preferred

Worked example:

User Input: "I need hotels in Jaipur from December 16 to December 20, 2025 for 2 guests with budget 20000 INR, prefer queen bed"

Reasoning:
1. Extract the location: "Jaipur"
2. Check-in date mentioned: December 16, 2025 -> 2025-12-16
3. Check-out date: December 20, 2025 -> 2025-12-20
4. Number of guests: 2
5. Budget mentioned: 20000 INR
6. Room preference: queen bed

Expected output:
{"location": "Jaipur", "check_in": "2025-12-16", "check_out": "2025-12-20", "guests": 2, "budget": "20000 INR", "room_type": "queen"}

Return ONLY a valid JSON object with these exact fields. No additional text.`

const structureSystemPrompt = `You are a hotel data extraction expert. You MUST return ONLY valid JSON arrays, no other text.`

// searchParamsSchema validates the model's parsed request object before it
// is decoded into a SearchRequest.
const searchParamsSchema = `{
  "type": "object",
  "required": ["location", "check_in", "check_out", "guests", "budget", "room_type"],
  "properties": {
    "location":  {"type": "string", "minLength": 1},
    "check_in":  {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "check_out": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "guests":    {"type": "integer", "minimum": 1},
    "budget":    {"type": "string"},
    "room_type": {"type": "string"}
  }
}`

// searchQueries builds the provider query set for one request. Two to three
// templated queries cover pricing, amenities, and contact angles.
func searchQueries(p domain.SearchRequest) []string {
	return []string{
		fmt.Sprintf("best hotels in %s India %s room price around %s booking contact",
			p.Location, p.RoomType, p.Budget),
		fmt.Sprintf("%s hotels amenities facilities %s to %s",
			p.Location, p.CheckIn, p.CheckOut),
		fmt.Sprintf("affordable hotels %s %s phone number website booking",
			p.Location, p.Budget),
	}
}

// buildStructurePrompt embeds the raw search results into the extraction
// instruction. Callers cap the result list before building the prompt.
func buildStructurePrompt(results []domain.SearchResult) string {
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		payload = []byte("[]")
	}
	return fmt.Sprintf(`You MUST extract hotel information from these search results and return ONLY a JSON array.

Search Results:
%s

Extract for each hotel:
- name (string)
- amenities (array of strings)
- room_price (string with price per night, e.g., "5000 INR" or "Not available")
- source (string URL)
- booking_link (string URL or "Not available")

CRITICAL INSTRUCTIONS:
1. Return ONLY a JSON array, nothing else
2. Start your response with [ and end with ]
3. Do NOT include any explanatory text
4. Do NOT wrap the JSON in markdown code blocks
5. Use double quotes for strings
6. If you find fewer than 3 hotels, that's okay, just return what you found

Example format:
[
  {"name": "Hotel ABC", "amenities": ["WiFi", "Pool"], "room_price": "3000 INR per night", "source": "https://example.com", "booking_link": "https://booking.com"},
  {"name": "Hotel XYZ", "amenities": ["AC", "Restaurant"], "room_price": "Not available", "source": "https://example2.com", "booking_link": "Not available"}
]`, payload)
}
