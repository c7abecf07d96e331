package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/platform/locale"
)

// RenderCatalog prints the price list, one line per leaf or group member
func RenderCatalog(w io.Writer, cat *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range cat.Categories() {
		entry, _ := cat.Entry(name)
		if entry.Kind() == catalog.KindGroup {
			fmt.Fprintln(tw, TitleStyle.Render(name))
			for _, key := range entry.Members() {
				item, _ := entry.Member(key)
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", key, item.Name, locale.Yen(item.Price))
			}
			continue
		}

		item, _ := entry.Item()
		price := locale.Yen(item.Price)
		if entry.CustomPrice() {
			price = SubtleStyle.Render("金額入力")
		}
		fmt.Fprintf(tw, "%s\t\t%s\n", TitleStyle.Render(name), price)
	}
	return tw.Flush()
}

// RenderChange prints the change due for received against total
func RenderChange(w io.Writer, total, received int64) error {
	change := sale.ComputeChange(received, total)
	if change.Insufficient {
		_, err := fmt.Fprintln(w, FormatError(fmt.Sprintf("%sに対して%sでは足りません", locale.Yen(total), locale.Yen(received))))
		return err
	}
	_, err := fmt.Fprintln(w, FormatSuccess("お釣り: "+locale.Yen(change.Amount)))
	return err
}
