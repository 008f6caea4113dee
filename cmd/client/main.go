package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	api "gitlab.com/dirk.krummacker/persons-service/pkg/model"
)

// Usage example on the command line:
// > go run main.go -port=8080
func main() {
	portPtr := flag.Int("port", 8080, "the port of the persons service")
	flag.Parse()
	baseURL := fmt.Sprintf("http://localhost:%d/persons", *portPtr)

	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	sizes := []int{1000, 5000, 10000, 50000}
	jsonBody := []byte(`{
		"personName": "Marcus Antonius",
		"email": "marcus@example.com",
		"dateOfBirth": "1983-11-09T00:00:00Z",
		"gender": "Male",
		"address": "Via Appia 1, Roma",
		"receiveNewsLetters": true
	}`)
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		ids := make([]uuid.UUID, 0, loops)
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				id, d := sendPostRequest(baseURL, bytes.NewReader(jsonBody))
				ids = append(ids, id)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// PUT requests
			f := func(id uuid.UUID) int64 {
				return sendPutGetDeleteRequest(baseURL, id, http.MethodPut, bytes.NewReader(jsonBody))
			}
			callInLoop(ids, f)
		}
		{
			// GET requests
			f := func(id uuid.UUID) int64 {
				return sendPutGetDeleteRequest(baseURL, id, http.MethodGet, nil)
			}
			callInLoop(ids, f)
		}
		{
			// DELETE requests
			f := func(id uuid.UUID) int64 {
				return sendPutGetDeleteRequest(baseURL, id, http.MethodDelete, nil)
			}
			callInLoop(ids, f)
		}
		fmt.Println()
	}
}

// callInLoop calls f for every id in random order and prints the average duration in microseconds.
func callInLoop(ids []uuid.UUID, f func(id uuid.UUID) int64) {
	shuffled := make([]uuid.UUID, len(ids))
	copy(shuffled, ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

func sendPostRequest(baseURL string, bodyReader io.Reader) (uuid.UUID, int64) {
	resBody, duration := sendRequest(http.MethodPost, baseURL, bodyReader)
	var person api.PersonResponse
	err := json.Unmarshal(resBody, &person)
	if err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return person.PersonID, duration
}

func sendPutGetDeleteRequest(baseURL string, id uuid.UUID, method string, bodyReader io.Reader) int64 {
	_, duration := sendRequest(method, baseURL+"/"+id.String(), bodyReader)
	return duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	return resBody, after - before
}
