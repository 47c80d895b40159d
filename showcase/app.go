package main

import (
	"github.com/go-drift/drift/pkg/core"
	"github.com/go-drift/drift/pkg/layout"
	"github.com/go-drift/drift/pkg/widgets"
)

// App returns the root widget for the tide showcase.
func App() core.Widget {
	return widgets.Padding{
		Padding: layout.EdgeInsetsAll(24),
		Child: widgets.Column{
			MainAxisAlignment:  widgets.MainAxisAlignmentStart,
			CrossAxisAlignment: widgets.CrossAxisAlignmentStretch,
			Children: []core.Widget{
				sectionTitle("Counter"),
				CounterScreen{},
				widgets.SizedBox{Height: 32},
				sectionTitle("Live search"),
				SearchScreen{},
			},
		},
	}
}

func sectionTitle(title string) core.Widget {
	return widgets.Padding{
		Padding: layout.EdgeInsetsSymmetric(0, 8),
		Child:   widgets.Text{Content: title},
	}
}
