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
	"github.com/vafast/thunderbench/pkg/conf"
)

var (
	// DatabaseFlag selects backend storing run metadata and results.
	DatabaseFlag = conf.NewStringFlag("metadata_db", "Database storing run metadata and results: none, cassandra or influxdb.", "none")

	cassandraAddressFlag           = conf.NewStringFlag("cassandra_address", "Address of Cassandra DB endpoint.", "127.0.0.1")
	cassandraPortFlag              = conf.NewIntFlag("cassandra_port", "Port of Cassandra DB endpoint.", 9042)
	cassandraUsernameFlag          = conf.NewStringFlag("cassandra_username", "The user name which will be presented when connecting to the cluster.", "")
	cassandraPasswordFlag          = conf.NewStringFlag("cassandra_password", "The password which will be presented when connecting to the cluster.", "")
	cassandraConnectionTimeoutFlag = conf.NewIntFlag("cassandra_connection_timeout", "Initial connection timeout in seconds.", 2)
	cassandraTimeoutFlag           = conf.NewIntFlag("cassandra_timeout", "Query timeout in seconds.", 10)
	cassandraKeyspaceFlag          = conf.NewStringFlag("cassandra_keyspace", "Keyspace used to store metadata.", "thunderbench")
	cassandraCreateKeyspaceFlag    = conf.NewBoolFlag("cassandra_create_keyspace", "Create keyspace when it does not exist.", true)
	cassandraSslFlag               = conf.NewBoolFlag("cassandra_ssl", "Use SSL when connecting to Cassandra.", false)
	cassandraSslHostValidationFlag = conf.NewBoolFlag("cassandra_ssl_host_validation", "Validate host name of Cassandra certificate.", false)
	cassandraSslCAPathFlag         = conf.NewStringFlag("cassandra_ssl_ca_path", "Path to CA certificate.", "")
	cassandraSslCertPathFlag       = conf.NewStringFlag("cassandra_ssl_cert_path", "Path to client certificate.", "")
	cassandraSslKeyPathFlag        = conf.NewStringFlag("cassandra_ssl_key_path", "Path to client private key.", "")

	influxDBAddressFlag        = conf.NewStringFlag("influxdb_address", "Address of InfluxDB endpoint.", "127.0.0.1")
	influxDBPortFlag           = conf.NewIntFlag("influxdb_port", "Port of InfluxDB endpoint.", 8086)
	influxDBUsernameFlag       = conf.NewStringFlag("influxdb_username", "InfluxDB user name.", "")
	influxDBPasswordFlag       = conf.NewStringFlag("influxdb_password", "InfluxDB password.", "")
	influxDBNameFlag           = conf.NewStringFlag("influxdb_db_name", "Database storing metadata.", "thunderbench")
	influxDBCreateDatabaseFlag = conf.NewBoolFlag("influxdb_create_database", "Create database when it does not exist.", true)
	influxDBInsecureFlag       = conf.NewBoolFlag("influxdb_insecure_skip_verify", "Skip verification of InfluxDB certificate.", false)
)
