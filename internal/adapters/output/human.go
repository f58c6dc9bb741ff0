package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/hearthcast/hearthcast/internal/adapters/cdclient"
)

// HumanPrinter prints human-readable output.
type HumanPrinter struct{}

// Print renders human output.
func (HumanPrinter) Print(v any) error {
	switch data := v.(type) {
	case cdclient.Result:
		return printObjects(data)
	case StatusOutput:
		return printStatus(data)
	default:
		pterm.Println("ok")
		return nil
	}
}

func printObjects(result cdclient.Result) error {
	rows := pterm.TableData{{"TITLE", "CLASS", "CHILDREN", "OBJECT_ID"}}
	for _, obj := range result.Objects {
		children := ""
		if obj.Container {
			children = strconv.FormatInt(obj.ChildCount, 10)
		}
		rows = append(rows, []string{obj.Title, shortClass(obj.Class), children, obj.ID})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}
	pterm.Println(fmt.Sprintf("%d of %d", result.NumberReturned, result.TotalMatches))
	return nil
}

func printStatus(status StatusOutput) error {
	pterm.Println("endpoint:  " + status.Endpoint)
	pterm.Println("update id: " + strconv.FormatUint(status.UpdateID, 10))
	return nil
}

// shortClass trims the common upnp class prefix for table display.
func shortClass(class string) string {
	for _, prefix := range []string{"object.container.", "object.item.", "object."} {
		if strings.HasPrefix(class, prefix) {
			return strings.TrimPrefix(class, prefix)
		}
	}
	return class
}
