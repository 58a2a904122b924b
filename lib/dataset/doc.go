// Package dataset provides a minimal numeric data set and its custom field serialiser.
//
// DoubleDataSet keeps its state private, so the reflective struct walk of the codec
// cannot see it. The serialiser registered by Register writes it as an OTHER payload
// framed by its own start and end marker:
//
//	StartMarker("DataSet")
//	  dataSetName STRING, nDims INT,
//	  x, y ... DOUBLE_ARRAY, exn/exp, eyn/eyp ... DOUBLE_ARRAY (only if present),
//	  dataLabels MAP, dataStyles MAP, metaData MAP,
//	  infoList, warningList, errorList STRING_ARRAY
//	EndMarker("DataSet")
//
// The reader walks the field headers until the end marker and skips every field it does
// not know, so data sets written by newer versions stay readable.
package dataset
