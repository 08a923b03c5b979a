// Package domain models INMET (Instituto Nacional de Meteorologia) weather
// alerts as published in the public RSS feed.
//
// # Data Source
//
// Alerts are published at https://apiprevmet3.inmet.gov.br/avisos/rss as an
// RSS 2.0 document. Each <item> carries a guid, a title, a pubDate, and a
// description holding an escaped HTML table with the structured fields.
//
// # Feed Conventions
//
// Title format:
//
//	"<status>. Severidade Grau: <severity>"  →  e.g. "Chuva Intensa. Severidade Grau: Perigo"
//	The grade suffix is stripped to obtain the status. Older items may omit it,
//	in which case severity falls back to the description table.
//
// Description table cells:
//
//	<th>Label</th><td>value</td>
//	Labels used: Início, Fim, Severidade, Evento, Descrição, Área.
//	The Área cell is prefixed with "Aviso para as Áreas: " followed by the
//	comma separated list of affected regions.
//
// Time format:
//
//	"2006-01-02 15:04:05.000000" (microseconds optional), no offset.
//	Values are interpreted as UTC. Início is mandatory; items without a
//	parseable Início are skipped. A missing Fim means the alert is open-ended.
//
// Unknown values:
//
//	Absent cells are replaced with fixed Portuguese sentinels (see
//	[EventUnknown], [SeverityUnknown], [DescriptionMissing], [AreaUndefined]),
//	matching what Home Assistant automations built on this feed expect.
//
// # Cycle Semantics
//
// Each poll produces the full set of currently valid alerts. An alert is "new"
// when its guid was absent from the immediately preceding poll's set; the
// previous set is a snapshot, not a history, so an alert that drops out of the
// feed and later returns is reported again. See [NewIDs].
package domain
