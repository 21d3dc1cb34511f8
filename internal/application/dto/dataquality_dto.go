package dto

// TableResponse tabla resultante de una operación de limpieza.
type TableResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// CleanResponse salida de la limpieza de un dataset de ventas.
type CleanResponse struct {
	Stats CleanStatsResponse `json:"stats"`
	Table TableResponse      `json:"table"`
}

// CleanStatsResponse resumen de filas antes/después de limpiar.
type CleanStatsResponse struct {
	OriginalRows int `json:"original_rows"`
	CleanedRows  int `json:"cleaned_rows"`
	RemovedRows  int `json:"removed_rows"`
}

// DetectOutliersRequest parámetros del marcado de outliers (el archivo va en
// el multipart).
type DetectOutliersRequest struct {
	Column    string  `form:"column" validate:"required"`
	Method    string  `form:"method"`    // zscore|iqr; vacío = zscore
	Threshold float64 `form:"threshold"` // 0 = default del método
}

// HandleMissingValuesRequest método de imputación por columna:
// mean|median|mode|ffill|bfill|zero|drop.
type HandleMissingValuesRequest struct {
	Methods map[string]string `json:"methods" form:"methods"`
}
