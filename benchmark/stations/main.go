package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"liyu1981.xyz/water-quality-dashboard/pkg/autotest"
	"liyu1981.xyz/water-quality-dashboard/pkg/devicesim"
	wqGrpc "liyu1981.xyz/water-quality-dashboard/pkg/grpc"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

var maxStations int = 500
var httpHostPort string = "127.0.0.1:1080"
var grpcHostPort string = "127.0.0.1:10801"

var grpcClient *wqGrpc.LiveServiceClient
var settingsClient *autotest.Client

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

func main() {
	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	conn, err := grpc.Dial(grpcHostPort, grpc.WithInsecure())
	if err != nil {
		log.Fatal("Failed to connect to gRPC server:", err)
	}
	defer conn.Close()
	grpcClient = wqGrpc.NewLiveServiceClient(conn)
	settingsClient = autotest.NewClient(fmt.Sprintf("http://%s/dashboard", httpHostPort), 10*time.Second)

	fmt.Printf("gRPC server verified and connected\n")

	var startTime time.Time
	var usedTime time.Duration

	stationIDs := make([]uint, maxStations)
	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := 0; i < maxStations; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			stationIDs[i] = insertStation()
			fmt.Printf("\rinserted station %v", i)
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rinserted %v stations: used time=%v seconds, throughput=%v action/second\n",
		maxStations, usedTime.Seconds(), float64(maxStations)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := 0; i < maxStations; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			doAction(stationIDs[i])
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rdid actions for %v stations: used time=%v seconds, throughput=%v action/second\n",
		maxStations, usedTime.Seconds(), float64(maxStations*4)/usedTime.Seconds(),
	)
}

func intn(n int) int {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Intn(n)
}

func flipCoin() bool {
	return intn(2) == 0
}

func insertStation() uint {
	jsonData, _ := json.Marshal(map[string]string{
		"name":             "bench-" + uuid.NewString(),
		"device_sensor_id": "WQ-" + uuid.NewString()[:8],
	})
	resp, err := http.Post(fmt.Sprintf("http://%s/api/stations", httpHostPort), "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	var station models.Station
	if err := json.NewDecoder(resp.Body).Decode(&station); err != nil || station.ID == 0 {
		panic(fmt.Sprintf("err: %v, status: %v", err, resp.StatusCode))
	}
	return station.ID
}

func doAction(stationID uint) {
	actions := []func(){
		genSaveSettingsAction(stationID),
		genPostSampleAction(stationID),
		genGetLiveAction(stationID),
		genListRunsAction(stationID),
	}
	actionNames := []string{
		"SaveSettings",
		"PostSample",
		"GetLive",
		"ListRuns",
	}
	rndMu.Lock()
	rnd.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
		actionNames[i], actionNames[j] = actionNames[j], actionNames[i]
	})
	rndMu.Unlock()
	for index, action := range actions {
		action()
		fmt.Printf("\rexecuted action %v for station %v", actionNames[index], stationID)
		time.Sleep(time.Duration(100+intn(1000)) * time.Millisecond)
	}
}

func genSaveSettingsAction(stationID uint) func() {
	return func() {
		var schedule autotest.Schedule
		switch intn(3) {
		case 0:
			schedule = autotest.Hourly{IntervalHours: 1 + intn(12)}
		case 1:
			schedule = autotest.Daily{IntervalDays: 1 + intn(7), TimeOfDay: fmt.Sprintf("%02d:%02d", intn(24), intn(60))}
		default:
			schedule = autotest.Monthly{IntervalMonths: 1 + intn(3), DayOfMonth: 1 + intn(28), TimeOfDay: "06:30"}
		}

		form := autotest.FormFor(autotest.Settings{StationID: stationID, Schedule: schedule, Enabled: flipCoin()})
		res, err := settingsClient.Save(context.Background(), form)
		if err != nil || !res.Success {
			fmt.Printf("\nerror: %v, response: %v\n", err, res)
		}
	}
}

func genPostSampleAction(stationID uint) func() {
	return func() {
		rndMu.Lock()
		sample := devicesim.GenerateSample(rnd, "WQ-BENCH")
		rndMu.Unlock()

		jsonData, _ := json.Marshal(sample.UploadBody())
		resp, err := http.Post(fmt.Sprintf("http://%s/dashboard?station_id=%d", httpHostPort, stationID), "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			fmt.Printf("\nerror: %v\n", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("\nresponse status code != 200: %v\n", resp.StatusCode)
		}
	}
}

func genGetLiveAction(stationID uint) func() {
	return func() {
		useHttp := flipCoin()

		if useHttp {
			resp, err := http.Get(fmt.Sprintf("http://%s/api/stations/%d/live", httpHostPort, stationID))
			if err != nil {
				fmt.Printf("\nerror: %v\n", err)
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				fmt.Printf("\nresponse status code != 200: %v\n", resp.StatusCode)
			}
		} else {
			_, err := grpcClient.GetLive(context.Background(), uint64(stationID))
			if err != nil {
				fmt.Printf("\nerror: %v\n", err)
			}
		}
	}
}

func genListRunsAction(stationID uint) func() {
	return func() {
		resp, err := http.Get("http://" + httpHostPort + "/api/stations/" + strconv.FormatUint(uint64(stationID), 10) + "/runs")
		if err != nil {
			fmt.Printf("\nerror: %v\n", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("\nresponse status code != 200: %v\n", resp.StatusCode)
		}
	}
}
