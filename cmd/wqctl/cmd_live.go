package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	wqGrpc "liyu1981.xyz/water-quality-dashboard/pkg/grpc"
)

var grpcAddr string

var liveCmd = &cobra.Command{
	Use:   "live <station_id>",
	Short: "Show a station's live snapshot over gRPC",
	Args:  cobra.ExactArgs(1),
	RunE:  runLive,
}

var remoteTestCmd = &cobra.Command{
	Use:   "remote-test <station_id>",
	Short: "Start a test cycle through the dashboard over gRPC",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemoteTest,
}

func init() {
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(remoteTestCmd)

	rootCmd.PersistentFlags().StringVar(&grpcAddr, "grpc", "127.0.0.1:10801", "dashboard gRPC address")
}

func dialLive() (*wqGrpc.LiveServiceClient, func(), error) {
	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to gRPC server: %w", err)
	}
	return wqGrpc.NewLiveServiceClient(conn), func() { _ = conn.Close() }, nil
}

func parseStationArg(arg string) (uint64, error) {
	var id uint64
	if _, err := fmt.Sscan(arg, &id); err != nil || id == 0 {
		return 0, fmt.Errorf("invalid station id %q", arg)
	}
	return id, nil
}

func printStruct(s *structpb.Struct) error {
	data, err := json.MarshalIndent(s.AsMap(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	id, err := parseStationArg(args[0])
	if err != nil {
		return err
	}
	client, closeFn, err := dialLive()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()
	out, err := client.GetLive(ctx, id)
	if err != nil {
		return err
	}
	return printStruct(out)
}

func runRemoteTest(cmd *cobra.Command, args []string) error {
	id, err := parseStationArg(args[0])
	if err != nil {
		return err
	}
	client, closeFn, err := dialLive()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()
	out, err := client.StartTest(ctx, id)
	if err != nil {
		return err
	}
	fmt.Println(out.Fields["message"].GetStringValue())
	return nil
}
