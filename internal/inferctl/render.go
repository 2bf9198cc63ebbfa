package inferctl

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"inferd/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func renderModels(w io.Writer, resp types.ModelsResponse) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tPATH")
	for _, m := range resp.Models {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Kind, m.Path)
	}
	tw.Flush()
}

func renderStatus(w io.Writer, st types.StatusResponse) {
	fmt.Fprintf(w, "state: %s", st.State)
	if st.DefaultModel != "" {
		fmt.Fprintf(w, "  default: %s", st.DefaultModel)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "uptime: %s  loads: %d", (time.Duration(st.UptimeSeconds) * time.Second).String(), st.LoadsTotal)
	if st.LoadsInProgress > 0 {
		fmt.Fprintf(w, " (%d in progress)", st.LoadsInProgress)
	}
	fmt.Fprintf(w, "  evictions: %d\n", st.EvictionsTotal)
	if len(st.Engines) == 0 {
		fmt.Fprintln(w, "no engines loaded")
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tPHASE\tGENS\tACTIVE\tLAST USED\tTEMP\tTOP_P\tMAX_LEN")
	for _, e := range st.Engines {
		active := e.ActiveGeneration
		if active == "" {
			active = "-"
		}
		lastUsed := "-"
		if e.LastUsed != 0 {
			lastUsed = time.Unix(e.LastUsed, 0).UTC().Format(time.RFC3339)
		}
		phase := e.Phase
		if e.FailureReason != "" {
			phase = fmt.Sprintf("%s (%s)", e.Phase, e.FailureReason)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%.2f\t%.2f\t%d\n",
			e.ModelID, phase, e.Generations, active, lastUsed,
			e.Params.Temperature, e.Params.TopP, e.Params.MaxGenLen)
	}
	tw.Flush()
}

func renderParams(w io.Writer, view types.ParamsView) {
	fmt.Fprintf(w, "temperature=%.2f top_p=%.2f max_gen_len=%d\n", view.Temperature, view.TopP, view.MaxGenLen)
}
