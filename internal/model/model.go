package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Flight{},
	&Sample{},
	&ImpactPrediction{},
	&FlightPath{},
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Flight is one recording session of a rocket
type Flight struct {
	gorm.Model
	Name             string       `json:"name" gorm:"size:200"`
	Rocket           string       `json:"rocket" gorm:"size:200"` // rocket id or name used for queries, empty for the controlled rocket
	RocketName       string       `json:"rocketName" gorm:"size:200"`
	PlanetCode       string       `json:"planetCode" gorm:"size:64"`
	ServerVersion    string       `json:"serverVersion" gorm:"size:64"`
	StartTime        time.Time    `json:"startTime" gorm:"index:idx_flight_start"`
	EndTime          sql.NullTime `json:"endTime" gorm:"default:NULL"`
	SampleIntervalMs uint         `json:"sampleIntervalMs" gorm:"default:1000"`
	Tag              string       `json:"tag" gorm:"size:127"`

	Samples []Sample           `json:"-"`
	Impacts []ImpactPrediction `json:"-"`
}

func (*Flight) TableName() string {
	return "flights"
}

// Sample is the rocket state at one tick
type Sample struct {
	ID       uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time     time.Time `json:"time"` // Wall-clock time when the sample was taken
	FlightID uint      `json:"flightId" gorm:"index:idx_sample_flight_id"`
	Flight   Flight    `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:FlightID;"`
	Seq      uint      `json:"seq" gorm:"index:idx_sample_seq"` // Tick number within the flight

	WorldTime       float64        `json:"worldTime"`
	PlanetCode      string         `json:"planetCode" gorm:"size:64"`
	Position        geom.Point     `json:"position"` // Planet-centric position in meters
	VelocityX       float64        `json:"velocityX"`
	VelocityY       float64        `json:"velocityY"`
	Altitude        float64        `json:"altitude"`
	Rotation        float64        `json:"rotation"`
	AngularVelocity float64        `json:"angularVelocity"`
	Throttle        float64        `json:"throttle"`
	RCS             bool           `json:"rcs" gorm:"default:false"`
	Mass            float64        `json:"mass"`
	Thrust          float64        `json:"thrust"`
	TWR             float64        `json:"twr"`
	Raw             datatypes.JSON `json:"raw"` // Rocket sim response as returned by the server
}

func (*Sample) TableName() string {
	return "samples"
}

// ImpactPrediction is the surface crossing predicted from one sample
type ImpactPrediction struct {
	ID         uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time  `json:"time"`
	FlightID   uint       `json:"flightId" gorm:"index:idx_impact_flight_id"`
	Flight     Flight     `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:FlightID;"`
	Seq        uint       `json:"seq"`
	PlanetCode string     `json:"planetCode" gorm:"size:64"`
	Hit        bool       `json:"hit" gorm:"default:false"`
	Point      geom.Point `json:"point"` // Empty when the trajectory does not hit
	Steps      int        `json:"steps"`
	FlightTime float64    `json:"flightTime"` // Seconds until impact
}

func (*ImpactPrediction) TableName() string {
	return "impact_predictions"
}

// FlightPath is the full trajectory of a flight, written when it ends
type FlightPath struct {
	ID       uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	FlightID uint            `json:"flightId" gorm:"uniqueIndex:idx_flightpath_flight_id"`
	Flight   Flight          `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:FlightID;"`
	Path     geom.LineString `json:"path"`
	Points   uint            `json:"points"`
	Length   float64         `json:"length"` // Path length in meters
}

func (*FlightPath) TableName() string {
	return "flight_paths"
}
