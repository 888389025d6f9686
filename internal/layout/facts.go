package layout

// Facts lists the factual text a page carries: title, key takeaway, metric
// values, table cells, bank names and roles, chart labels and values, gantt
// tasks. Both renderers must surface every one of them.
func (p Page) Facts() []string {
	var out []string
	add := func(values ...string) {
		for _, v := range values {
			if v != "" {
				out = append(out, v)
			}
		}
	}

	if p.Cover != nil {
		add(p.Cover.Title, p.Cover.Subtitle)
	}
	add(p.Title)
	if p.Takeaway != nil {
		add(p.Takeaway.Text)
	}
	for _, m := range p.Metrics {
		add(m.Label, m.Display())
	}
	for _, pt := range p.Points {
		add(pt.Text)
	}
	if p.Table != nil {
		add(p.Table.Headers...)
		for _, row := range p.Table.Rows {
			add(row...)
		}
	}
	if p.Cards != nil {
		for _, c := range p.Cards.Cards {
			add(c.Name, c.Role)
		}
	}
	if p.Ring != nil {
		for _, s := range p.Ring.Segments {
			add(s.Label, s.Display())
		}
	}
	if p.Gantt != nil {
		for _, b := range p.Gantt.Bars {
			add(b.Task)
		}
	}
	return out
}
