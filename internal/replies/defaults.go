package replies

// Built-in reply texts for the default table.
const (
	WelcomeText = `Welcome to *Kapila River Front*! 🌿🏨
A Luxury Farm Villa on the Riverside

Here's what I can help you with:
🛏 *room* – Room details & availability
💰 *price* – 2026 Rate card

Or just type your question! 😊`

	PricingText = `💰 *Kapila River Front – 2026 Rate Card*

All rates are *per room, per night* for *double occupancy*, *inclusive of all meals* (welcome drinks, lunch, high tea, dinner & breakfast).

📌 *Regular (Non-Seasonal):*
• Weekdays: *₹10,000*
• Weekends / Holidays: *₹12,000*

📌 *March – May:*
• Weekdays: *₹12,000*
• Weekends: *₹13,000*

📌 *Festive dates (Dasara, December, early January, 14 Feb):*
• *₹13,000 – ₹14,000* per night

Type *room* to check availability.`

	AvailabilityText = `📅 *Rooms & Availability*

We have *5 identical Heritage Rooms* (min 2 / max 3 guests each).

🕐 *Check-in:* 1:00 PM
🕚 *Check-out:* 11:00 AM

To check availability, please share:
1️⃣ Check-in date
2️⃣ Check-out date
3️⃣ Number of guests
4️⃣ Number of rooms needed

✅ Booking is confirmed only after *100% payment*.`

	HelpText = `Thank you for reaching out to *Kapila River Front*! 🌿

I can help you with:
👋 *hi* – Welcome menu
💰 *price* – 2026 Rates
🛏 *room* – Rooms & availability

Or type your question and our team will get back to you! 🙏`
)

// DefaultTable returns the built-in table: greeting, pricing and availability
// groups with a help reply as fallback.
func DefaultTable() *Table {
	return MustNewTable([]Group{
		{
			Name:     "greeting",
			Keywords: []string{"hi", "hello"},
			Reply:    Reply{Text: WelcomeText},
		},
		{
			Name:     "pricing",
			Keywords: []string{"price", "cost"},
			Reply:    Reply{Text: PricingText},
		},
		{
			Name:     "availability",
			Keywords: []string{"room", "available"},
			Reply:    Reply{Text: AvailabilityText},
		},
	}, Reply{Text: HelpText})
}
