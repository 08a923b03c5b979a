package domain

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

const (
	testGUID        = "https://alertas2.inmet.gov.br/45123"
	testTitle       = "Chuva Intensa. Severidade Grau: Perigo"
	testPubDate     = "Mon, 01 Jan 2024 09:30:00 -0300"
	testAreaCities  = "Centro Norte Baiano, Nordeste Baiano"
	testDescription = "INMET publica aviso iniciando em: 01/01/2024 10:00."
)

// descriptionTable renders an INMET description table from label/value pairs.
func descriptionTable(cells ...string) string {
	var b strings.Builder
	b.WriteString("<table>")
	for i := 0; i+1 < len(cells); i += 2 {
		fmt.Fprintf(&b, "<tr><th align='left'>%s</th><td>%s</td></tr>", cells[i], cells[i+1])
	}
	b.WriteString("</table>")
	return b.String()
}

// fullDescription is a complete description with every known cell.
func fullDescription(start, end string) string {
	cells := []string{
		"Status", "Chuva Intensa",
		"Evento", "Chuvas Intensas",
		"Severidade", "Perigo",
		"Início", start,
	}
	if end != "" {
		cells = append(cells, "Fim", end)
	}
	cells = append(cells,
		"Descrição", testDescription,
		"Área", "Aviso para as Áreas: "+testAreaCities,
	)
	return descriptionTable(cells...)
}

func ptr(s string) *string { return &s }

func testItem(guid, title, description string) Item {
	return Item{
		GUID:        ptr(guid),
		Title:       ptr(title),
		Description: ptr(description),
		PubDate:     ptr(testPubDate),
	}
}

// itemXML renders one <item>, wrapping the description in CDATA.
func itemXML(guid, title, description string) string {
	return fmt.Sprintf(
		"<item><title>%s</title><guid>%s</guid><description><![CDATA[%s]]></description><pubDate>%s</pubDate></item>",
		title, guid, description, testPubDate,
	)
}

func feedXML(items ...string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<rss version="2.0"><channel><title>Avisos INMET</title>` +
		strings.Join(items, "") +
		`</channel></rss>`)
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}
