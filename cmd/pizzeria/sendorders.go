// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/must"
	"github.com/sapcc/go-bits/osext"
)

// test data matching the seed contents of the authoritative store
var (
	testPizzaNames = []string{
		"Veggie", "Margarita", "Reine", "Carnivore", "Orientale",
		"Andalouse", "4_Fromages", "Chevre", "Chorizo", "Calzone",
	}
	testPizzaSizes = []string{"G", "M"}
	testClientIDs  = []int64{529997, 530143, 529996, 530111, 530080}
)

// taskSendTestOrders emits a random well-formed order datagram at a fixed
// interval, for exercising a running engine without the real order source.
func taskSendTestOrders(ctx context.Context) {
	target := osext.GetenvOrDefault("PIZZERIA_ORDER_TARGET", "127.0.0.1:40100")
	interval := getenvDuration("PIZZERIA_ORDER_INTERVAL", 5*time.Second)

	conn := must.Return(net.Dial("udp", target))
	defer conn.Close()
	logg.Info("sending one order to %s every %s", target, interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now()
		delivery := now.Add(time.Duration(30+rand.IntN(61)) * time.Minute)
		record := fmt.Sprintf("%s,%d,%s,%s,%d,%s",
			now.Format("02/01/2006 15:04:05"),
			testClientIDs[rand.IntN(len(testClientIDs))],
			testPizzaNames[rand.IntN(len(testPizzaNames))],
			testPizzaSizes[rand.IntN(len(testPizzaSizes))],
			1+rand.IntN(5),
			delivery.Format("15:04"),
		)
		_, err := conn.Write([]byte(record))
		if err != nil {
			logg.Error("send failed: %s", err.Error())
		} else {
			logg.Info("sent order: %s", record)
		}
	}
}
