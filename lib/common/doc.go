/*
Package common holds the ambient pieces shared by the serializer façade and the dio
command line tool: the logger factory used with dragonboats logger facade and the
Config struct.

Every package of the module declares its logger as

	var Logger = logger.GetLogger("codec")

InitLoggers installs a factory producing lines like

	2025/01/02 15:04:05 WARN  | codec           | skipping final field Point.x

and sets the level of all package loggers at once.
*/
package common
