package main

import (
	"flag"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/robotalks/courier/pkg/l1/comm/mqtt"
	"github.com/robotalks/courier/pkg/l1/msgs"

	_ "github.com/robotalks/courier/pkg/courier/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/courier/"
)

func init() {
	if val := os.Getenv("COURIER_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") {
			if len(payload) > 0 {
				log.Printf("%s: %s", topic, string(payload))
			} else {
				log.Printf("%s: offline", topic)
			}
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		kind := typed.Kind()
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: %s decode error: (type_id=%x) %v", topic, kind, typed.TypeId, err)
			return
		}
		log.Printf("%s: %s [%s] %s", topic, kind,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			msg.(msgs.SerializableMessage).Serializable().String())
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
