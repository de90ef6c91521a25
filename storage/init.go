package storage

func init() {
	RegisterAdapter(isSQLDB, newSQLAdapter)
	RegisterAdapter(isMongoDB, newMongoAdapter)
	RegisterAdapter(isFilePath, newFileAdapter)
	RegisterAdapter(isMemory, newMemoryAdapter)

	// drivers
	RegisterDriver(DialectSQLite, newSQLDriver(DialectSQLite))
	RegisterDriver(DialectPostgres, newSQLDriver(DialectPostgres))
	RegisterDriver(DialectMongo, newMongoDriver)
	RegisterDriver(DialectFile, newFileDriver)
	RegisterDriver(DialectMemory, newMemoryDriver)
}
