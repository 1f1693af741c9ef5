package airquality

var NearestSQL = nearestSQL
