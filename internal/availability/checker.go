package availability

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

const (
	dateColumn    = 0
	tariffHeader  = "Tariff"
	sheetDateForm = "02-01-2006"
	displayForm   = "02 Jan 2006"
)

// DefaultRoomColumns are the sheet headers holding one room each. An empty
// cell means the room is free on that row's date.
var DefaultRoomColumns = []string{"Room 1", "Room 2", "Room 3", "Room 4", "Room 5"}

// DefaultContact is the reception number quoted when the sheet cannot answer.
const DefaultContact = "+91-XXXXX-XXXXX"

// Status classifies an availability answer.
type Status string

const (
	StatusFree        Status = "free"
	StatusBooked      Status = "booked"
	StatusNotFound    Status = "not_found"
	StatusUnavailable Status = "unavailable"
)

// Day is the booking state of one date in the sheet.
type Day struct {
	Date   time.Time
	Rooms  int
	Booked int
	Tariff float64
}

// Free returns the number of unbooked rooms.
func (d Day) Free() int {
	return d.Rooms - d.Booked
}

// ErrDateNotFound is returned when the sheet has no row for a date.
var ErrDateNotFound = errors.New("availability: date not in booking sheet")

// Checker answers date questions from a booking spreadsheet. The workbook is
// opened on every lookup so edits to the file show up without a restart.
type Checker struct {
	path    string
	rooms   []string
	contact string
	now     func() time.Time
	logger  *logging.Logger
	printer *message.Printer
}

// NewChecker creates a checker over the workbook at path.
func NewChecker(path string, logger *logging.Logger) *Checker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Checker{
		path:    path,
		rooms:   append([]string(nil), DefaultRoomColumns...),
		contact: DefaultContact,
		now:     time.Now,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// WithRoomColumns overrides the room headers. An empty list is ignored.
func (c *Checker) WithRoomColumns(columns []string) *Checker {
	if len(columns) > 0 {
		c.rooms = append([]string(nil), columns...)
	}
	return c
}

// WithContact overrides the reception number used in replies.
func (c *Checker) WithContact(contact string) *Checker {
	if contact = strings.TrimSpace(contact); contact != "" {
		c.contact = contact
	}
	return c
}

// WithClock overrides the clock used to default a missing year.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	if now != nil {
		c.now = now
	}
	return c
}

// Respond answers text when it mentions a date. It reports false when no
// date is found, leaving the message to the keyword table.
func (c *Checker) Respond(text string) (string, bool) {
	date, ok := ParseDate(text, c.now())
	if !ok {
		return "", false
	}
	body, status := c.Answer(date)
	c.logger.Info("availability: date lookup",
		"date", date.Format(sheetDateForm),
		"status", string(status),
	)
	return body, true
}

// Answer renders the reply for date.
func (c *Checker) Answer(date time.Time) (string, Status) {
	display := date.Format(displayForm)

	day, err := c.Lookup(date)
	switch {
	case errors.Is(err, ErrDateNotFound):
		return fmt.Sprintf("📅 *%s*\n\n"+
			"We don't have this date in our booking sheet yet.\n"+
			"Please contact reception for availability:\n"+
			"📞 *%s*", display, c.contact), StatusNotFound
	case errors.Is(err, fs.ErrNotExist):
		c.logger.Error("availability: booking file not found", "path", c.path)
		return fmt.Sprintf("⚠️ Booking data is currently unavailable.\n"+
			"Please contact reception directly:\n"+
			"📞 *%s*", c.contact), StatusUnavailable
	case err != nil:
		c.logger.Error("availability: failed to read booking sheet", "path", c.path, "error", err)
		return fmt.Sprintf("⚠️ Something went wrong while checking availability.\n"+
			"Please contact reception:\n"+
			"📞 *%s*", c.contact), StatusUnavailable
	}

	if day.Free() <= 0 {
		return fmt.Sprintf("❌ *Sorry, fully booked on %s.*\n\n"+
			"All %d rooms are occupied on this date.\n\n"+
			"💡 Try a nearby date or contact reception:\n"+
			"📞 *%s*", display, day.Rooms, c.contact), StatusBooked
	}

	tariff := ""
	if day.Tariff > 0 {
		tariff = c.printer.Sprintf("💰 Tariff: *₹%d* per room/night\n", int64(math.Round(day.Tariff)))
	}
	return fmt.Sprintf("✅ *Rooms available on %s!*\n\n"+
		"🛏 Available: *%d* of %d rooms\n"+
		"📌 Booked: %d of %d\n"+
		"%s\n"+
		"To book, please share:\n"+
		"1️⃣ Number of guests\n"+
		"2️⃣ Number of rooms\n"+
		"3️⃣ Traveling with pets?\n\n"+
		"Or type *book* for full booking details.",
		display, day.Free(), day.Rooms, day.Booked, day.Rooms, tariff), StatusFree
}

// Lookup reads the active sheet and returns the row for date. The first
// column holds the date, either as an Excel date or as dd-mm-yyyy text; the
// first row holds the headers.
func (c *Checker) Lookup(date time.Time) (Day, error) {
	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return Day{}, fmt.Errorf("availability: open %s: %w", c.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()), excelize.Options{RawCellValue: true})
	if err != nil {
		return Day{}, fmt.Errorf("availability: read rows: %w", err)
	}
	if len(rows) == 0 {
		return Day{}, ErrDateNotFound
	}

	headers := rows[0]
	roomIdx := make([]int, 0, len(c.rooms))
	tariffIdx := -1
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == tariffHeader {
			tariffIdx = i
		}
		for _, room := range c.rooms {
			if h == room {
				roomIdx = append(roomIdx, i)
			}
		}
	}

	for _, row := range rows[1:] {
		rowDate, ok := cellDate(cell(row, dateColumn))
		if !ok || !sameDay(rowDate, date) {
			continue
		}
		day := Day{Date: date, Rooms: len(roomIdx)}
		for _, i := range roomIdx {
			if cell(row, i) != "" {
				day.Booked++
			}
		}
		if tariffIdx >= 0 {
			day.Tariff, _ = strconv.ParseFloat(cell(row, tariffIdx), 64)
		}
		return day, nil
	}
	return Day{}, ErrDateNotFound
}

// cell returns the trimmed value at i. Rows are ragged: trailing empty cells
// are not returned by the reader.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		return t, err == nil
	}
	for _, layout := range []string{sheetDateForm, "2-1-2006", "02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
