package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrEthical07/mtredis"
	"github.com/MrEthical07/mtredis/metrics/export/prometheus"
	"github.com/spf13/cobra"
)

const authKeyPreview = 8

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Run the version gate, initializing a fresh session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				if err := s.storage.Open(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "session %s open at version %d\n", s.storage.Prefix(), mtredis.CurrentVersion)
				return nil
			})
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the session fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				return printInfo(ctx, cmd.OutOrStdout(), s.storage)
			})
		},
	}
}

func printInfo(ctx context.Context, w io.Writer, st *mtredis.Storage) error {
	ints := []mtredis.Field[int64]{st.DCID(), st.Date(), st.UserID(), st.Version(), st.APIID()}
	for _, f := range ints {
		v, ok, err := f.Get(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
		if f.Name() == mtredis.FieldDate && ok {
			fmt.Fprintf(w, "%-10s %d (%s)\n", f.Name(), v, time.Unix(v, 0).UTC().Format(time.RFC3339))
			continue
		}
		printField(w, f.Name(), v, ok)
	}

	bools := []mtredis.Field[bool]{st.TestMode(), st.IsBot()}
	for _, f := range bools {
		v, ok, err := f.Get(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
		printField(w, f.Name(), v, ok)
	}

	key, ok, err := st.AuthKey().Get(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", mtredis.FieldAuthKey, err)
	}
	if !ok {
		printField(w, mtredis.FieldAuthKey, nil, false)
		return nil
	}
	preview := key
	if len(preview) > authKeyPreview {
		preview = preview[:authKeyPreview]
	}
	fmt.Fprintf(w, "%-10s %d bytes, %s...\n", mtredis.FieldAuthKey, len(key), hex.EncodeToString(preview))
	return nil
}

func printField(w io.Writer, name string, v any, ok bool) {
	if !ok {
		fmt.Fprintf(w, "%-10s <unset>\n", name)
		return
	}
	fmt.Fprintf(w, "%-10s %v\n", name, v)
}

func newPeerCmd() *cobra.Command {
	var (
		id       int64
		username string
		phone    string
	)
	cmd := &cobra.Command{
		Use:   "peer",
		Short: "Resolve a peer by id, username or phone number",
		RunE: func(cmd *cobra.Command, args []string) error {
			set := 0
			for _, name := range []string{"id", "username", "phone"} {
				if cmd.Flags().Changed(name) {
					set++
				}
			}
			if set != 1 {
				return errors.New("exactly one of --id, --username, --phone is required")
			}

			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				var (
					peer mtredis.InputPeer
					err  error
				)
				switch {
				case cmd.Flags().Changed("id"):
					peer, err = s.storage.PeerByID(ctx, id)
				case cmd.Flags().Changed("username"):
					peer, err = s.storage.PeerByUsername(ctx, username)
				default:
					peer, err = s.storage.PeerByPhoneNumber(ctx, phone)
				}
				if err != nil {
					return err
				}
				printPeer(cmd.OutOrStdout(), peer)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Stored peer id")
	cmd.Flags().StringVar(&username, "username", "", "Username pointer")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number pointer")
	return cmd
}

func printPeer(w io.Writer, peer mtredis.InputPeer) {
	switch p := peer.(type) {
	case mtredis.InputPeerUser:
		fmt.Fprintf(w, "user id=%d access_hash=%d\n", p.UserID, p.AccessHash)
	case mtredis.InputPeerChat:
		fmt.Fprintf(w, "chat id=%d\n", p.ChatID)
	case mtredis.InputPeerChannel:
		fmt.Fprintf(w, "channel id=%d access_hash=%d\n", p.ChannelID, p.AccessHash)
	}
}

func newStatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List stored update states",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				states, err := s.storage.UpdateStates(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(states) == 0 {
					fmt.Fprintln(w, "no update states")
					return nil
				}
				for _, st := range states {
					printState(w, st)
				}
				return nil
			})
		},
	}
}

func printState(w io.Writer, st mtredis.UpdateState) {
	fmt.Fprintf(w, "state_id=%d pts=%d qts=%d date=%d seq=%d\n", st.StateID, st.Pts, st.Qts, st.Date, st.Seq)
}

func newSetStateCmd() *cobra.Command {
	var st mtredis.UpdateState
	cmd := &cobra.Command{
		Use:   "set-state",
		Short: "Write one update state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				if err := s.storage.SetUpdateState(ctx, st); err != nil {
					return err
				}
				printState(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&st.StateID, "id", 0, "State id")
	cmd.Flags().Int64Var(&st.Pts, "pts", 0, "pts")
	cmd.Flags().Int64Var(&st.Qts, "qts", 0, "qts")
	cmd.Flags().Int64Var(&st.Date, "date", 0, "Unix date")
	cmd.Flags().Int64Var(&st.Seq, "seq", 0, "seq")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newDeleteStateCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "delete-state",
		Short: "Remove one update state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				return s.storage.DeleteUpdateState(ctx, id)
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "State id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the session fields; peers and update states are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				if err := s.storage.Delete(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "session %s deleted\n", s.storage.Prefix())
				return nil
			})
		},
	}
}

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Read the whole session and print the resulting metrics in Prometheus format",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				if err := printInfo(ctx, io.Discard, s.storage); err != nil {
					return err
				}
				if _, err := s.storage.UpdateStates(ctx); err != nil {
					return err
				}
				_, err := io.WriteString(cmd.OutOrStdout(), prometheus.NewPrometheusExporter(s.storage).Render())
				return err
			})
		},
	}
}
