// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package annotate is the Column Annotator: given the (relation oid,
// attribute number) the driver reports for a result column, it resolves
// the owning table/column and any foreign key the column participates in,
// using a per-(connection, database) catalog snapshot cached across
// requests.
package annotate

// Key identifies the pool this catalog snapshot belongs to. It mirrors
// pgpool.Key deliberately; this package does not import pgpool to keep
// the catalog cache independent of pool lifecycle.
type Key struct {
	Connection string
	Database   string
}

// columnRef is a driver-reported column identity: the OID of the table a
// column belongs to, and its 1-based attribute number within that table.
type columnRef struct {
	RelID  uint32
	AttNum int16
}

// fkEdge is one resolved foreign key: the constrained column (the map key
// it's stored under) references Column in Table via Constraint.
type fkEdge struct {
	Constraint string
	Table      string
	Column     string
}

// catalogEntry is the resolved snapshot for one database: every ordinary
// column's owning table/name, and every foreign-key edge, keyed by the
// constrained side's columnRef.
type catalogEntry struct {
	tableNames map[uint32]string
	columns    map[columnRef]string
	fks        map[columnRef]fkEdge
}
