// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"fmt"
	"strings"
	"time"

	"github.com/influxdata/influxdb/client/v2"
	"github.com/pkg/errors"
)

const (
	influxMeasurement = "metadata"
)

// InfluxDBConfig holds configuration for InfluxDB
type InfluxDBConfig struct {
	HTTPConfig     client.HTTPConfig
	DBName         string
	CreateDatabase bool
}

// InfluxDB keeps the InfluxDB session alive, holds the active configuration and
// the run id to tag the metadata with.
type InfluxDB struct {
	runID   string
	session client.Client
	config  InfluxDBConfig
}

// DefaultInfluxDBConfig applies the InfluxDB settings from the command line flags and
// environment variables.
func DefaultInfluxDBConfig() InfluxDBConfig {
	return InfluxDBConfig{
		DBName:         influxDBNameFlag.Value(),
		CreateDatabase: influxDBCreateDatabaseFlag.Value(),
		HTTPConfig: client.HTTPConfig{
			Addr:               fmt.Sprintf("http://%s:%d", influxDBAddressFlag.Value(), influxDBPortFlag.Value()),
			Password:           influxDBPasswordFlag.Value(),
			Username:           influxDBUsernameFlag.Value(),
			InsecureSkipVerify: influxDBInsecureFlag.Value(),
		},
	}
}

// NewInfluxDB returns the Metadata helper from a run id and configuration.
func NewInfluxDB(runID string, config InfluxDBConfig) (Metadata, error) {
	session, err := client.NewHTTPClient(config.HTTPConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create influx client for run %s", runID)
	}
	metadata := &InfluxDB{
		runID:   runID,
		config:  config,
		session: session,
	}

	if config.CreateDatabase {
		if err := metadata.query(fmt.Sprintf("CREATE DATABASE %s", config.DBName), ""); err != nil {
			return nil, errors.Wrapf(err, "cannot create influx database %q", config.DBName)
		}
	}

	return metadata, nil
}

func (m *InfluxDB) query(command, database string) error {
	_, err := m.queryResults(command, database)
	return err
}

func (m *InfluxDB) queryResults(command, database string) ([]client.Result, error) {
	response, err := m.session.Query(client.Query{Command: command, Database: database})
	if err != nil {
		return nil, errors.Wrapf(err, "influxdb query failed for run %s", m.runID)
	}
	if response.Error() != nil {
		return nil, errors.Wrapf(response.Error(), "influxdb response contained error for run %s", m.runID)
	}
	return response.Results, nil
}

// storeMap writes metadata as a single point with run id and kind tags.
func (m *InfluxDB) storeMap(metadata map[string]string, kind string) error {
	batchPoints, err := client.NewBatchPoints(client.BatchPointsConfig{Database: m.config.DBName})
	if err != nil {
		return errors.Wrapf(err, "creation of batch points for InfluxDB failed for metadata kind %q", kind)
	}

	tags := map[string]string{"kind": kind, "run_id": m.runID}
	fields := make(map[string]interface{}, len(metadata))
	for key, value := range metadata {
		fields[key] = value
	}
	point, err := client.NewPoint(influxMeasurement, tags, fields, time.Now())
	if err != nil {
		return errors.Wrapf(err, "cannot create new point, kind %q", kind)
	}
	batchPoints.AddPoint(point)

	if err := m.session.Write(batchPoints); err != nil {
		return errors.Wrapf(err, "cannot publish metadata of kind %q", kind)
	}
	return nil
}

// Record stores a key and value and associates with the run id.
func (m *InfluxDB) Record(key, value, kind string) error {
	return m.storeMap(map[string]string{key: value}, kind)
}

// RecordMap stores a key and value map and associates with the run id.
func (m *InfluxDB) RecordMap(metadata map[string]string, kind string) error {
	return m.storeMap(metadata, kind)
}

// GetByKind retrieves single kind from the database. If duplicates are found then
// the last one is returned.
func (m *InfluxDB) GetByKind(kind string) (map[string]string, error) {
	// Grouping by both tags removes them from returned columns.
	command := fmt.Sprintf("SELECT last(*) FROM %s WHERE run_id='%s' AND kind='%s' GROUP BY run_id,kind",
		influxMeasurement, m.runID, kind)
	results, err := m.queryResults(command, m.config.DBName)
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]string)
	for _, result := range results {
		for _, row := range result.Series {
			for _, value := range row.Values {
				for idx, cell := range value {
					// Column 0 is a timestamp; results may be sparse.
					if cell == nil || idx == 0 {
						continue
					}
					column := strings.Replace(row.Columns[idx], "last_", "", 1)
					metadata[column] = fmt.Sprint(cell)
				}
			}
		}
	}
	if len(metadata) == 0 {
		return nil, errors.Errorf("cannot retrieve metadata for run %q and %q kind", m.runID, kind)
	}
	return metadata, nil
}

// Clear deletes all metadata entries associated with the current run id.
func (m *InfluxDB) Clear() error {
	return m.query(fmt.Sprintf("DROP SERIES FROM %s WHERE run_id='%s'", influxMeasurement, m.runID), m.config.DBName)
}
